// Package migrations embeds the goose SQL migrations. The SQL is kept to the
// common subset understood by both PostgreSQL and SQLite.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
