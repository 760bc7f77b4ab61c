package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type SupplierRepository struct {
	DB *sql.DB
}

func NewSupplierRepository(db *sql.DB) *SupplierRepository {
	return &SupplierRepository{DB: db}
}

func (r *SupplierRepository) FindAll(ctx context.Context) ([]entity.Supplier, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, phone, category, price, created_at FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar fornecedores: %w", err)
	}
	defer rows.Close()

	var suppliers []entity.Supplier
	for rows.Next() {
		var (
			s               entity.Supplier
			phone, category sql.NullString
			price           decimal.NullDecimal
		)
		if err := rows.Scan(&s.ID, &s.Name, &phone, &category, &price, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear fornecedor: %w", err)
		}
		s.Phone = stringOrEmpty(phone)
		s.Category = stringOrEmpty(category)
		s.Price = decimalPtr(price)
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *SupplierRepository) Insert(ctx context.Context, suppliers ...entity.Supplier) error {
	if len(suppliers) == 0 {
		return nil
	}
	query := `INSERT INTO suppliers (id, name, phone, category, price, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, s := range suppliers {
			_, err := tx.ExecContext(ctx, query, s.ID, s.Name, nullString(s.Phone), nullString(s.Category), s.Price, s.CreatedAt)
			if err != nil {
				return fmt.Errorf("erro ao inserir fornecedor: %w", err)
			}
		}
		return nil
	})
}

func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("erro ao remover fornecedor: %w", err)
	}
	return nil
}

func (r *SupplierRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM suppliers`); err != nil {
		return fmt.Errorf("erro ao limpar fornecedores: %w", err)
	}
	return nil
}
