package islands

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohron/skyclaims-store/internal/dbx"
)

// SchemaState is the shape the islands table is found in.
type SchemaState int

const (
	SchemaAbsent SchemaState = iota
	SchemaLegacy
	SchemaCurrent
	SchemaUnknown
)

func (s SchemaState) String() string {
	switch s {
	case SchemaAbsent:
		return "absent"
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Column names are kept lower-case; SQLite compares identifiers without case.
var (
	currentColumns = []string{"island", "owner", "claim", "spawnx", "spawny", "spawnz", "locked"}
	legacyColumns  = []string{"owner", "id", "x", "y", "z", "world"}
)

// detectSchema classifies table by the names of its columns.
func detectSchema(ctx context.Context, db dbx.DBTX, table string) (SchemaState, error) {
	cols, err := tableColumns(ctx, db, table)
	if err != nil {
		return SchemaUnknown, err
	}
	switch {
	case len(cols) == 0:
		return SchemaAbsent, nil
	case hasAll(cols, currentColumns):
		return SchemaCurrent, nil
	case hasAll(cols, legacyColumns):
		return SchemaLegacy, nil
	default:
		return SchemaUnknown, nil
	}
}

func tableColumns(ctx context.Context, db dbx.DBTX, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("inspect %s table: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s table info: %w", table, err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s table info: %w", table, err)
	}
	return cols, nil
}

func hasAll(cols map[string]bool, want []string) bool {
	for _, c := range want {
		if !cols[c] {
			return false
		}
	}
	return true
}
