package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver do Postgres
)

const connectTimeout = 5 * time.Second

// NewDBConnection abre o pool do banco hospedado e só devolve depois de um Ping.
// Sem banco o CRM roda com o cache local, então falhar aqui é tratado por quem chama.
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão: %w", err)
	}

	// Poucas instâncias e escrita serializada pelo LeadManager: pool pequeno basta.
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("banco não respondeu em %s: %w", connectTimeout, err)
	}

	log.Println("✅ Conectado ao banco de dados")
	return db, nil
}
