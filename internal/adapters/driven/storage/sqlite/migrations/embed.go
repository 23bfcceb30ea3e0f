// Package migrations holds the numbered schema migrations of the content
// database. Files are named NNN_name.up.sql and NNN_name.down.sql and are
// applied in order by the sqlite store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
