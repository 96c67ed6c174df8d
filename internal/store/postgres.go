package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const opTimeout = 5 * time.Second

// Postgres stores snapshots in cashflow.kv_store so several API instances
// can share one saved game.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS cashflow;
		CREATE TABLE IF NOT EXISTS cashflow.kv_store (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func (p *Postgres) Save(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := p.db.Exec(ctx, `
		INSERT INTO cashflow.kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, string(value))
	return err
}

func (p *Postgres) Load(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var value string
	err := p.db.QueryRow(ctx, `SELECT value::text FROM cashflow.kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (p *Postgres) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := p.db.Exec(ctx, `DELETE FROM cashflow.kv_store`)
	return err
}
