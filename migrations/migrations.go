// Package migrations embeds the SQL schema migrations so the server
// binary can bootstrap a fresh database on its own.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
