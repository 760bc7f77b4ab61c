package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, name, phone, email, role, status, created_at, updated_at,
	assigned_to_id, sale_value, payment_method, modality, class_id,
	has_down_payment, down_payment_value, remaining_balance,
	lost_at, won_at, next_follow_up_at, follow_up_note,
	observation, commission_payment_id`

func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func scanLead(rows *sql.Rows) (entity.Lead, error) {
	var (
		l                                 entity.Lead
		email, role, assignedTo, payment  sql.NullString
		modality, classID, followUpNote   sql.NullString
		observation, commissionPaymentID  sql.NullString
		saleValue, downPayment, remaining decimal.NullDecimal
		lostAt, wonAt, nextFollowUp       sql.NullTime
	)

	err := rows.Scan(
		&l.ID, &l.Name, &l.Phone, &email, &role, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		&assignedTo, &saleValue, &payment, &modality, &classID,
		&l.HasDownPayment, &downPayment, &remaining,
		&lostAt, &wonAt, &nextFollowUp, &followUpNote,
		&observation, &commissionPaymentID,
	)
	if err != nil {
		return entity.Lead{}, err
	}

	l.Email = stringOrEmpty(email)
	l.Role = stringOrEmpty(role)
	l.AssignedToID = stringOrEmpty(assignedTo)
	l.SaleValue = decimalPtr(saleValue)
	l.PaymentMethod = stringOrEmpty(payment)
	l.Modality = entity.Modality(stringOrEmpty(modality))
	l.ClassID = stringOrEmpty(classID)
	l.DownPaymentValue = decimalPtr(downPayment)
	l.RemainingBalance = decimalPtr(remaining)
	l.LostAt = timePtr(lostAt)
	l.WonAt = timePtr(wonAt)
	l.NextFollowUpAt = timePtr(nextFollowUp)
	l.FollowUpNote = stringOrEmpty(followUpNote)
	l.Observation = stringOrEmpty(observation)
	l.CommissionPaymentID = stringOrEmpty(commissionPaymentID)
	return l, nil
}

// Insert grava o lote inteiro numa transação (importação de planilha).
func (r *LeadRepository) Insert(ctx context.Context, leads ...entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	query := `INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO NOTHING`

	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("erro ao preparar insert de leads: %w", err)
		}
		defer stmt.Close()

		for i := range leads {
			l := &leads[i]
			_, err := stmt.ExecContext(ctx,
				l.ID, l.Name, l.Phone, nullString(l.Email), nullString(l.Role), l.Status, l.CreatedAt, l.UpdatedAt,
				nullString(l.AssignedToID), l.SaleValue, nullString(l.PaymentMethod), nullString(string(l.Modality)), nullString(l.ClassID),
				l.HasDownPayment, l.DownPaymentValue, l.RemainingBalance,
				l.LostAt, l.WonAt, l.NextFollowUpAt, nullString(l.FollowUpNote),
				nullString(l.Observation), nullString(l.CommissionPaymentID),
			)
			if err != nil {
				return fmt.Errorf("erro ao inserir lead %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2, phone = $3, email = $4, role = $5, status = $6, updated_at = $7,
			assigned_to_id = $8, sale_value = $9, payment_method = $10, modality = $11, class_id = $12,
			has_down_payment = $13, down_payment_value = $14, remaining_balance = $15,
			lost_at = $16, won_at = $17, next_follow_up_at = $18, follow_up_note = $19,
			observation = $20, commission_payment_id = $21
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		l.ID, l.Name, l.Phone, nullString(l.Email), nullString(l.Role), l.Status, l.UpdatedAt,
		nullString(l.AssignedToID), l.SaleValue, nullString(l.PaymentMethod), nullString(string(l.Modality)), nullString(l.ClassID),
		l.HasDownPayment, l.DownPaymentValue, l.RemainingBalance,
		l.LostAt, l.WonAt, l.NextFollowUpAt, nullString(l.FollowUpNote),
		nullString(l.Observation), nullString(l.CommissionPaymentID),
	)
	if err != nil {
		return fmt.Errorf("erro ao atualizar lead: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("erro ao deletar leads: %w", err)
	}
	return nil
}

func (r *LeadRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return fmt.Errorf("erro ao limpar leads: %w", err)
	}
	return nil
}
