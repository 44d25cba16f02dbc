// Package migrations embeds the golang-migrate SQL migrations for the
// Postgres conflict store backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
