// Package migrations embeds the inquiry service schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
