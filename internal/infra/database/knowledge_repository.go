package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

type KnowledgeRepository struct {
	DB *sql.DB
}

func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository {
	return &KnowledgeRepository{DB: db}
}

func (r *KnowledgeRepository) FindAll(ctx context.Context) ([]entity.KnowledgeItem, error) {
	query := `SELECT id, title, content, type, category, link, sync_url, updated_at FROM knowledge_items ORDER BY updated_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar base de conhecimento: %w", err)
	}
	defer rows.Close()

	var items []entity.KnowledgeItem
	for rows.Next() {
		var (
			k                       entity.KnowledgeItem
			category, link, syncURL sql.NullString
		)
		if err := rows.Scan(&k.ID, &k.Title, &k.Content, &k.Type, &category, &link, &syncURL, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear item: %w", err)
		}
		k.Category = stringOrEmpty(category)
		k.Link = stringOrEmpty(link)
		k.SyncURL = stringOrEmpty(syncURL)
		items = append(items, k)
	}
	return items, rows.Err()
}

func (r *KnowledgeRepository) Insert(ctx context.Context, k *entity.KnowledgeItem) error {
	query := `
		INSERT INTO knowledge_items (id, title, content, type, category, link, sync_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query, k.ID, k.Title, k.Content, k.Type,
		nullString(k.Category), nullString(k.Link), nullString(k.SyncURL), k.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao criar item: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) Update(ctx context.Context, k *entity.KnowledgeItem) error {
	query := `
		UPDATE knowledge_items
		SET title = $2, content = $3, type = $4, category = $5, link = $6, sync_url = $7, updated_at = $8
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, k.ID, k.Title, k.Content, k.Type,
		nullString(k.Category), nullString(k.Link), nullString(k.SyncURL), k.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao atualizar item: %w", err)
	}
	return nil
}

func (r *KnowledgeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM knowledge_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("erro ao deletar item: %w", err)
	}
	return nil
}
