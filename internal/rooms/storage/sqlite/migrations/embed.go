package migrations

import "embed"

// FS contains embedded SQLite migrations for rooms storage.
//
//go:embed *.sql
var FS embed.FS
