package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type TeamRepository struct {
	DB *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) FindAll(ctx context.Context) ([]entity.TeamMember, error) {
	query := `SELECT id, name, email, role, phone, password_hash, commission_rate, city, class_date FROM team ORDER BY name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar equipe: %w", err)
	}
	defer rows.Close()

	var members []entity.TeamMember
	for rows.Next() {
		var (
			m                            entity.TeamMember
			phone, hash, city, classDate sql.NullString
			rate                         decimal.NullDecimal
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &phone, &hash, &rate, &city, &classDate); err != nil {
			return nil, fmt.Errorf("erro ao escanear membro: %w", err)
		}
		m.Phone = stringOrEmpty(phone)
		m.PasswordHash = stringOrEmpty(hash)
		m.CommissionRate = decimalPtr(rate)
		m.City = stringOrEmpty(city)
		m.ClassDate = stringOrEmpty(classDate)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *TeamRepository) Insert(ctx context.Context, m *entity.TeamMember) error {
	query := `
		INSERT INTO team (id, name, email, role, phone, password_hash, commission_rate, city, class_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query, m.ID, m.Name, m.Email, m.Role, nullString(m.Phone),
		nullString(m.PasswordHash), m.CommissionRate, nullString(m.City), nullString(m.ClassDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return entity.ErrEmailTaken
		}
		return fmt.Errorf("erro ao inserir membro: %w", err)
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM team WHERE id = $1`, id); err != nil {
		return fmt.Errorf("erro ao remover membro: %w", err)
	}
	return nil
}
