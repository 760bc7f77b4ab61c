package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type commissionRow struct {
	ID         string          `db:"id"`
	SellerID   string          `db:"seller_id"`
	SellerName string          `db:"seller_name"`
	Amount     decimal.Decimal `db:"amount"`
	Rate       decimal.Decimal `db:"rate"`
	SalesCount int             `db:"sales_count"`
	Volume     decimal.Decimal `db:"volume"`
	PaidByID   string          `db:"paid_by_id"`
	PaidAt     time.Time       `db:"paid_at"`
}

// CommissionRepository usa sqlx: as colunas batem 1:1 com a struct.
type CommissionRepository struct {
	DB *sqlx.DB
}

func NewCommissionRepository(db *sql.DB) *CommissionRepository {
	return &CommissionRepository{DB: sqlx.NewDb(db, "pgx")}
}

func (r *CommissionRepository) FindAll(ctx context.Context) ([]entity.CommissionPayment, error) {
	var rows []commissionRow
	query := `
		SELECT id, seller_id, seller_name, amount, rate, sales_count, volume, paid_by_id, paid_at
		FROM commission_payments
		ORDER BY paid_at DESC
	`
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("erro ao buscar comissões: %w", err)
	}

	payments := make([]entity.CommissionPayment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, entity.CommissionPayment(row))
	}
	return payments, nil
}

func (r *CommissionRepository) Insert(ctx context.Context, p *entity.CommissionPayment) error {
	query := `
		INSERT INTO commission_payments (id, seller_id, seller_name, amount, rate, sales_count, volume, paid_by_id, paid_at)
		VALUES (:id, :seller_id, :seller_name, :amount, :rate, :sales_count, :volume, :paid_by_id, :paid_at)
	`
	if _, err := r.DB.NamedExecContext(ctx, query, commissionRow(*p)); err != nil {
		return fmt.Errorf("erro ao registrar pagamento de comissão: %w", err)
	}
	return nil
}
