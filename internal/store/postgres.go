package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/itemlist"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS items (
    id BIGINT PRIMARY KEY,
    number TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    is_private BOOLEAN NOT NULL DEFAULT FALSE,
    status TEXT NOT NULL,
    service TEXT,
    author TEXT NOT NULL,
    created_on TIMESTAMPTZ,
    updated_on TIMESTAMPTZ
)`

const upsertItemSQL = `
INSERT INTO items (id, number, summary, is_private, status, service, author, created_on, updated_on)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    number = EXCLUDED.number,
    summary = EXCLUDED.summary,
    is_private = EXCLUDED.is_private,
    status = EXCLUDED.status,
    service = EXCLUDED.service,
    author = EXCLUDED.author,
    created_on = EXCLUDED.created_on,
    updated_on = EXCLUDED.updated_on`

// Postgres reads items from a PostgreSQL items table.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool sized from cfg and ensures the schema exists.
func OpenPostgres(ctx context.Context, cfg config.SourceConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	if u, err := url.Parse(cfg.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// ListItems returns every item in id order.
func (p *Postgres) ListItems(ctx context.Context) ([]itemlist.Item, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, number, summary, is_private, status, service, author, created_on, updated_on
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []itemlist.Item
	for rows.Next() {
		var (
			id                              int64
			number, summary, status, author string
			private                         bool
			service                         pgtype.Text
			createdOn, updatedOn            pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &number, &summary, &private, &status, &service, &author, &createdOn, &updatedOn); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var svc *string
		if service.Valid {
			svc = strPtr(service.String)
		}
		items = append(items, toItem(int(id), number, summary, private, status, svc, author,
			fromTimestamptz(createdOn), fromTimestamptz(updatedOn)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// PutItems upserts items by id in one batch.
func (p *Postgres) PutItems(ctx context.Context, items []itemlist.Item) error {
	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(upsertItemSQL, upsertArgs(item.Entity.Data)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// upsertArgs returns the upsertItemSQL parameters for one item.
func upsertArgs(d *itemlist.ItemData) []any {
	service := pgtype.Text{}
	if d.Service != nil {
		service = pgtype.Text{String: d.Service.Name, Valid: true}
	}
	return []any{
		int64(d.ID), d.Number, d.Summary, d.IsPrivate, d.Status.Name, service, d.Author.Name,
		toTimestamptz(d.CreatedOn), toTimestamptz(d.UpdatedOn),
	}
}

// DeleteAll removes every item and returns how many were deleted.
func (p *Postgres) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	return tag.RowsAffected(), nil
}

// toTimestamptz stores unparseable timestamps as NULL.
func toTimestamptz(s string) pgtype.Timestamptz {
	t, ok := itemlist.Timestamp(s).Time()
	if !ok {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func fromTimestamptz(ts pgtype.Timestamptz) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.UTC().Format(time.RFC3339Nano)
}
