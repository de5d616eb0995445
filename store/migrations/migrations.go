// Package migrations embeds the SQL schema migrations applied by the
// Postgres store at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
