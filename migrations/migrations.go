// Package migrations embeds the SQL for lexkit-owned tables.
package migrations

import "embed"

//go:embed postgres/*.up.sql
var Postgres embed.FS
