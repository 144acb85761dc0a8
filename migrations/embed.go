// Package migrations embeds the versioned PostgreSQL schema so the server
// and the migrate tool ship it inside the binary.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
