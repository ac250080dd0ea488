// Package migrations embeds the goose SQL migrations so the migrate binary carries them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
