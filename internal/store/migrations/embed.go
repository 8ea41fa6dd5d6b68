package migrations

import "embed"

// FS contains the SQLite schema for the item store.
//
//go:embed *.sql
var FS embed.FS
