package usecase

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// LeadChange is one event of the leads change feed.
type LeadChange struct {
	Type   ChangeType   `json:"type"`
	Origin string       `json:"origin"`
	LeadID string       `json:"lead_id"`
	Lead   *entity.Lead `json:"lead,omitempty"`
	At     time.Time    `json:"at"`
}

func (m *LeadManager) publishOp(changeType ChangeType, lead entity.Lead) Operation {
	if m.publisher == nil {
		return Operation{}
	}
	change := LeadChange{
		Type:   changeType,
		Origin: m.origin,
		LeadID: lead.ID,
		At:     m.now(),
	}
	if changeType != ChangeDelete {
		change.Lead = &lead
	}
	return Operation{
		Name: "changefeed.publish",
		Fn:   func(ctx context.Context) error { return m.publisher.PublishLeadChange(ctx, change) },
	}
}

// ApplyRemoteChange reconciles a change made elsewhere. The last write wins and nothing
// is written back to the remote store. Reports whether the local state changed.
func (m *LeadManager) ApplyRemoteChange(ctx context.Context, change LeadChange) bool {
	if change.Origin != "" && change.Origin == m.origin {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch change.Type {
	case ChangeInsert, ChangeUpdate:
		if change.Lead == nil || change.Lead.ID == "" {
			log.Printf("⚠️ Evento %s sem lead ignorado", change.Type)
			return false
		}
		lead := change.Lead.Clone()
		if idx := m.leadIndex(lead.ID); idx >= 0 {
			m.leads[idx] = lead
		} else {
			m.leads = append([]entity.Lead{lead}, m.leads...)
		}
	case ChangeDelete:
		id := change.LeadID
		if id == "" && change.Lead != nil {
			id = change.Lead.ID
		}
		idx := m.leadIndex(id)
		if idx < 0 {
			return false
		}
		m.leads = append(m.leads[:idx], m.leads[idx+1:]...)
	default:
		log.Printf("⚠️ Tipo de evento desconhecido: %q", change.Type)
		return false
	}

	m.mirror(ctx, cacheKeyLeads)
	return true
}
