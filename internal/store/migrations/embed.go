// Package migrations embeds the store's SQL schema migrations.
package migrations

import "embed"

// FS holds the *.up.sql files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
