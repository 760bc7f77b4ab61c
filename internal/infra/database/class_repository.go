package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

type ClassRepository struct {
	DB *sql.DB
}

func NewClassRepository(db *sql.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) FindAll(ctx context.Context) ([]entity.ImmersiveClass, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, city, date, immersion FROM immersive_classes ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar turmas: %w", err)
	}
	defer rows.Close()

	var classes []entity.ImmersiveClass
	for rows.Next() {
		var (
			c         entity.ImmersiveClass
			immersion sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.City, &c.Date, &immersion); err != nil {
			return nil, fmt.Errorf("erro ao escanear turma: %w", err)
		}
		c.Immersion = stringOrEmpty(immersion)
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *ClassRepository) Insert(ctx context.Context, c *entity.ImmersiveClass) error {
	query := `INSERT INTO immersive_classes (id, city, date, immersion) VALUES ($1, $2, $3, $4)`
	if _, err := r.DB.ExecContext(ctx, query, c.ID, c.City, c.Date, nullString(c.Immersion)); err != nil {
		return fmt.Errorf("erro ao criar turma: %w", err)
	}
	return nil
}

func (r *ClassRepository) Update(ctx context.Context, c *entity.ImmersiveClass) error {
	query := `UPDATE immersive_classes SET city = $2, date = $3, immersion = $4 WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, query, c.ID, c.City, c.Date, nullString(c.Immersion)); err != nil {
		return fmt.Errorf("erro ao atualizar turma: %w", err)
	}
	return nil
}

func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM immersive_classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("erro ao deletar turma: %w", err)
	}
	return nil
}
