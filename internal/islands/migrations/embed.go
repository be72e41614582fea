// Package migrations embeds the SQL schema migrations for the island store.
// Go migrations live next to the code they need in package islands.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
