package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/store/migrations"
)

// SQLite stores items in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies the embedded schema.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ListItems returns every item in id order.
func (s *SQLite) ListItems(ctx context.Context) ([]itemlist.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
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
			id                              int
			number, summary, status, author string
			private                         bool
			service                         sql.NullString
			createdOn, updatedOn            string
		)
		if err := rows.Scan(&id, &number, &summary, &private, &status, &service, &author, &createdOn, &updatedOn); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var svc *string
		if service.Valid {
			svc = strPtr(service.String)
		}
		items = append(items, toItem(id, number, summary, private, status, svc, author, createdOn, updatedOn))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// PutItems inserts or replaces items by id in a single transaction.
func (s *SQLite) PutItems(ctx context.Context, items []itemlist.Item) error {
	for i, item := range items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, number, summary, is_private, status, service, author, created_on, updated_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			summary = excluded.summary,
			is_private = excluded.is_private,
			status = excluded.status,
			service = excluded.service,
			author = excluded.author,
			created_on = excluded.created_on,
			updated_on = excluded.updated_on`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		d := item.Entity.Data
		var service sql.NullString
		if d.Service != nil {
			service = sql.NullString{String: d.Service.Name, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			d.ID, d.Number, d.Summary, d.IsPrivate, d.Status.Name, service, d.Author.Name, d.CreatedOn, d.UpdatedOn,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", d.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteAll removes every item and returns how many were deleted.
func (s *SQLite) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	return res.RowsAffected()
}

// migrate runs each embedded .sql file once, in name order.
func migrate(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().Unix()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}
