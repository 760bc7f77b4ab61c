package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

const (
	feedbackAfter      = 24 * time.Hour
	urgentAfter        = 48 * time.Hour
	recentReassignment = time.Hour
)

// Notifications lists the alerts for the viewer's leads: about to be reassigned,
// waiting for feedback after a contact, or just received from another seller.
func (m *LeadManager) Notifications(viewer *entity.TeamMember) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var out []Notification
	for i := range m.leads {
		lead := &m.leads[i]
		if viewer != nil && !viewer.CanSee(lead) {
			continue
		}
		if lead.Status == entity.StatusGanho {
			continue
		}

		idle := now.Sub(lead.LastActivity())
		switch {
		case idle < recentReassignment && strings.Contains(lead.Observation, ReassignmentNote):
			out = append(out, Notification{
				Kind:     NotificationReassigned,
				LeadID:   lead.ID,
				LeadName: lead.Name,
				Message:  "Lead recebido por realocação automática",
				IdleFor:  idle,
			})
		case idle >= urgentAfter && idle < m.staleAfter:
			left := m.staleAfter - idle
			out = append(out, Notification{
				Kind:     NotificationUrgent,
				LeadID:   lead.ID,
				LeadName: lead.Name,
				Message:  fmt.Sprintf("Sem interação há %dh. Será realocado em %dh", int(idle.Hours()), int(left.Hours())),
				IdleFor:  idle,
			})
		case idle >= feedbackAfter && idle < urgentAfter && lead.Status.IsContacted():
			out = append(out, Notification{
				Kind:     NotificationFeedback,
				LeadID:   lead.ID,
				LeadName: lead.Name,
				Message:  "Registre o retorno do contato com " + lead.Name,
				IdleFor:  idle,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].IdleFor > out[j].IdleFor })
	return out
}
