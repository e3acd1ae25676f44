// Package migrations embeds the goose SQL files, one directory per dialect.
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql
var FS embed.FS
