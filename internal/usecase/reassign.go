package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

// ReassignmentNote marks observations written by the sweep. Notifications look for it.
const ReassignmentNote = "[Sistema] Realocado automaticamente por inatividade"

type reassignment struct {
	lead     entity.Lead
	seller   entity.TeamMember
	previous string
}

// ReassignStaleLeads hands every idle lead to the next seller in team order.
// Won and unassigned leads are left alone, and nothing happens with fewer than two sellers.
func (m *LeadManager) ReassignStaleLeads(ctx context.Context) (int, error) {
	m.mu.Lock()

	sellers := m.sellers()
	if len(sellers) < 2 {
		m.mu.Unlock()
		return 0, nil
	}

	position := make(map[string]int, len(sellers))
	for i, s := range sellers {
		position[s.ID] = i
	}

	now := m.now()
	var moved []reassignment
	for i := range m.leads {
		lead := &m.leads[i]
		if lead.Status == entity.StatusGanho || lead.AssignedToID == "" {
			continue
		}
		if !lead.IsStale(now, m.staleAfter) {
			continue
		}

		current, ok := position[lead.AssignedToID]
		if !ok {
			current = -1
		}
		next := sellers[(current+1)%len(sellers)]
		if next.ID == lead.AssignedToID {
			continue
		}

		previous := m.memberName(lead.AssignedToID)
		if previous == "" {
			previous = "desconhecido"
		}
		lead.AssignedToID = next.ID
		lead.UpdatedAt = now
		lead.AppendObservation(now, ReassignmentNote+". Responsável anterior: "+previous)

		moved = append(moved, reassignment{lead: lead.Clone(), seller: next, previous: previous})
	}

	if len(moved) == 0 {
		m.mu.Unlock()
		return 0, nil
	}

	// Persisted lead by lead; a failure leaves the rest for the next sweep to converge.
	for _, r := range moved {
		m.writer.Enqueue(m.leadUpdateOp(r.lead), m.publishOp(ChangeUpdate, r.lead))
	}
	m.mirror(ctx, cacheKeyLeads)
	m.metrics.LeadsReassigned(len(moved))
	notifier := m.notifier
	m.mu.Unlock()

	log.Printf("🔄 %d lead(s) realocado(s) por inatividade", len(moved))

	if notifier != nil {
		for _, r := range moved {
			if err := notifier.NotifyReassignment(ctx, r.seller, r.lead, r.previous); err != nil {
				log.Printf("⚠️ Falha ao notificar %s sobre o lead %s: %v", r.seller.Name, r.lead.ID, err)
			}
		}
	}
	return len(moved), nil
}
