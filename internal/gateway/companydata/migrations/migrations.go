// Package migrations embeds the goose migrations for a company's data
// schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
