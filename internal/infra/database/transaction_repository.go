package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) FindAll(ctx context.Context) ([]entity.Transaction, error) {
	query := `SELECT id, type, amount, description, category, date, class_id, payment_method, lead_id FROM transactions ORDER BY date DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar transações: %w", err)
	}
	defer rows.Close()

	var txs []entity.Transaction
	for rows.Next() {
		var (
			t                              entity.Transaction
			classID, paymentMethod, leadID sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Description, &t.Category, &t.Date, &classID, &paymentMethod, &leadID); err != nil {
			return nil, fmt.Errorf("erro ao escanear transação: %w", err)
		}
		t.ClassID = stringOrEmpty(classID)
		t.PaymentMethod = stringOrEmpty(paymentMethod)
		t.LeadID = stringOrEmpty(leadID)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *TransactionRepository) Insert(ctx context.Context, txs ...entity.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	query := `INSERT INTO transactions (id, type, amount, description, category, date, class_id, payment_method, lead_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, t := range txs {
			_, err := tx.ExecContext(ctx, query, t.ID, t.Type, t.Amount, t.Description, t.Category, t.Date,
				nullString(t.ClassID), nullString(t.PaymentMethod), nullString(t.LeadID))
			if err != nil {
				return fmt.Errorf("erro ao inserir transação: %w", err)
			}
		}
		return nil
	})
}
