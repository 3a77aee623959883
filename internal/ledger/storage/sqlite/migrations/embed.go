package migrations

import "embed"

// FS contains embedded SQLite migrations for ledger blob storage.
//
//go:embed *.sql
var FS embed.FS
