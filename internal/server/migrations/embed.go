// Package migrations embeds the server's PostgreSQL schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
