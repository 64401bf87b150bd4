// Package migrations embeds the SQL schema migrations so the binaries can
// apply them without a migrations directory on disk.
package migrations

import "embed"

// FS holds every NNNNNN_name.{up,down}.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
