package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
)

// pgxIface is the subset of *pgxpool.Pool the store needs (pgxmock implements it too).
type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS salon_snapshots (
	key        TEXT PRIMARY KEY,
	value      JSONB,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps one row per snapshot key. A NULL value means "never written".
type Postgres struct {
	db pgxIface
}

// NewPostgres wraps a pool (or mock).
func NewPostgres(db pgxIface) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create salon_snapshots: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Postgres.Get")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	var value []byte
	err := p.db.QueryRow(ctx, `SELECT value FROM salon_snapshots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := tracer.Start(ctx, "Postgres.Set")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	_, err := p.db.Exec(ctx,
		`INSERT INTO salon_snapshots (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", key, err)
	}
	return nil
}

// Update locks the key's row for the duration of fn.
func (p *Postgres) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) (err error) {
	ctx, span := tracer.Start(ctx, "Postgres.Update")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx,
		`INSERT INTO salon_snapshots (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, key); err != nil {
		return fmt.Errorf("claim snapshot %s: %w", key, err)
	}

	var current []byte
	if err = tx.QueryRow(ctx,
		`SELECT value FROM salon_snapshots WHERE key = $1 FOR UPDATE`, key).Scan(&current); err != nil {
		return fmt.Errorf("lock snapshot %s: %w", key, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx,
		`UPDATE salon_snapshots SET value = $2, updated_at = now() WHERE key = $1`, key, next); err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
