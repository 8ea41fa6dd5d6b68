// Package store loads the item collection shown by the table.
//
// Three drivers are available: a YAML fixture file, a SQLite database and a
// PostgreSQL database. Every driver returns the whole collection in insertion
// order; ordering for display is always done by the table itself.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/itemlist/internal/config"
	"github.com/JonMunkholm/itemlist/internal/itemlist"
	"github.com/JonMunkholm/itemlist/internal/logging"
)

// ErrUnknownDriver is returned by Open for a driver name it does not know.
var ErrUnknownDriver = errors.New("unknown item source driver")

// Source provides the item collection.
type Source interface {
	ListItems(ctx context.Context) ([]itemlist.Item, error)
	Close() error
}

// Writer is implemented by sources that can store items.
type Writer interface {
	PutItems(ctx context.Context, items []itemlist.Item) error
}

// Resetter is implemented by sources that can remove every stored item.
type Resetter interface {
	DeleteAll(ctx context.Context) (int64, error)
}

// Open connects to the source selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Driver {
	case config.DriverYAML:
		return NewFixture(cfg.FixturePath), nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Load lists items from src, bounded by timeout when it is positive.
func Load(ctx context.Context, src Source, timeout time.Duration) ([]itemlist.Item, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := src.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	logging.FromContext(ctx).Debug("items loaded",
		"count", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}

func strPtr(s string) *string {
	return &s
}

// toItem builds an item from flat column values.
func toItem(id int, number, summary string, private bool, status string, service *string, author, created, updated string) itemlist.Item {
	data := itemlist.ItemData{
		ID:        id,
		Number:    number,
		Summary:   summary,
		IsPrivate: private,
		Status:    &itemlist.Named{Name: status},
		Author:    &itemlist.Named{Name: author},
		CreatedOn: created,
		UpdatedOn: updated,
	}
	if service != nil {
		data.Service = &itemlist.Named{Name: *service}
	}
	return itemlist.NewItem(data)
}

// validateItem rejects items the table cannot project.
func validateItem(i int, item itemlist.Item) error {
	data := item.Entity.Data
	switch {
	case data == nil:
		return fmt.Errorf("item %d: missing data", i)
	case data.Status == nil:
		return fmt.Errorf("item %d (%s): missing status", i, data.Number)
	case data.Author == nil:
		return fmt.Errorf("item %d (%s): missing author", i, data.Number)
	}
	return nil
}
