// Package migrations embeds the goose SQL migrations applied at startup.
package migrations

import "embed"

// FS contains the embedded Postgres migrations.
//
//go:embed *.sql
var FS embed.FS
