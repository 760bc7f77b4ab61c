package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

type HistoryRepository struct {
	DB *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) FindAll(ctx context.Context) ([]entity.LeadHistoryEntry, error) {
	query := `
		SELECT id, lead_id, lead_name, old_status, new_status, observation, changed_by_id, changed_by_name, created_at
		FROM lead_history
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico: %w", err)
	}
	defer rows.Close()

	var entries []entity.LeadHistoryEntry
	for rows.Next() {
		var (
			h                      entity.LeadHistoryEntry
			oldStatus, observation sql.NullString
		)
		err := rows.Scan(&h.ID, &h.LeadID, &h.LeadName, &oldStatus, &h.NewStatus, &observation,
			&h.ChangedByID, &h.ChangedByName, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear histórico: %w", err)
		}
		if oldStatus.Valid {
			s := entity.LeadStatus(oldStatus.String)
			h.OldStatus = &s
		}
		h.Observation = stringOrEmpty(observation)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (r *HistoryRepository) Insert(ctx context.Context, entries ...entity.LeadHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO lead_history (id, lead_id, lead_name, old_status, new_status, observation, changed_by_id, changed_by_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, h := range entries {
			var old *string
			if h.OldStatus != nil {
				s := string(*h.OldStatus)
				old = &s
			}
			_, err := tx.ExecContext(ctx, query, h.ID, h.LeadID, h.LeadName, old, h.NewStatus,
				nullString(h.Observation), h.ChangedByID, h.ChangedByName, h.CreatedAt)
			if err != nil {
				return fmt.Errorf("erro ao gravar histórico: %w", err)
			}
		}
		return nil
	})
}
