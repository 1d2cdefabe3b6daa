// Package migrations embeds the goose SQL migration files so binaries can
// run them without shipping loose files alongside the executable.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
