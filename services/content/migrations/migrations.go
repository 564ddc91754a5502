// Package migrations embeds the content service schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
