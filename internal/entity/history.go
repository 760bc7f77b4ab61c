package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SystemActorID   = "system"
	SystemActorName = "Sistema"
)

// Actor is whoever triggered a change. The zero value means the system itself.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func SystemActor() Actor {
	return Actor{ID: SystemActorID, Name: SystemActorName}
}

func (a Actor) OrSystem() Actor {
	if a.ID == "" {
		return SystemActor()
	}
	if a.Name == "" {
		a.Name = SystemActorName
	}
	return a
}

// LeadHistoryEntry is append-only: one per status-changing operation.
type LeadHistoryEntry struct {
	ID            string      `json:"id"`
	LeadID        string      `json:"lead_id"`
	LeadName      string      `json:"lead_name"`
	OldStatus     *LeadStatus `json:"old_status,omitempty"`
	NewStatus     LeadStatus  `json:"new_status"`
	Observation   string      `json:"observation,omitempty"`
	ChangedByID   string      `json:"changed_by_id"`
	ChangedByName string      `json:"changed_by_name"`
	CreatedAt     time.Time   `json:"created_at"`
}

func NewLeadHistoryEntry(lead *Lead, oldStatus *LeadStatus, observation string, actor Actor, now time.Time) LeadHistoryEntry {
	actor = actor.OrSystem()
	var old *LeadStatus
	if oldStatus != nil {
		s := *oldStatus
		old = &s
	}
	return LeadHistoryEntry{
		ID:            uuid.New().String(),
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		OldStatus:     old,
		NewStatus:     lead.Status,
		Observation:   observation,
		ChangedByID:   actor.ID,
		ChangedByName: actor.Name,
		CreatedAt:     now,
	}
}
