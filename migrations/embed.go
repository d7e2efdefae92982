// Package migrations holds the SQL schema of the document store tables.
package migrations

import "embed"

// FS contains every *.up.sql / *.down.sql file
//
//go:embed *.sql
var FS embed.FS
