// Package migrations embeds the preference database schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
