package islands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mohron/skyclaims-store/internal/dbx"
)

const nextTable = "islands_next"

// createNextTableSQL has the same layout as migrations/00001_create_islands.sql.
const createNextTableSQL = `CREATE TABLE ` + nextTable + ` (
    island TEXT PRIMARY KEY,
    owner  TEXT NOT NULL,
    claim  TEXT NOT NULL,
    spawnX INTEGER NOT NULL,
    spawnY INTEGER NOT NULL,
    spawnZ INTEGER NOT NULL,
    locked BOOLEAN NOT NULL DEFAULT 0
)`

// loadLegacy reads a first-generation table. The legacy id column held the
// claim; each island gets a new ID and starts unlocked. A NULL coordinate
// reads as 0, as the plugin that wrote these tables did.
func loadLegacy(ctx context.Context, db dbx.DBTX, newID func() uuid.UUID) ([]Island, error) {
	rows, err := db.QueryContext(ctx, `SELECT owner, id, x, y, z FROM `+islandsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to select legacy islands: %w", err)
	}
	defer rows.Close()

	var result []Island
	for rows.Next() {
		var (
			owner, claim string
			x, y, z      sql.NullInt64
		)
		if err := rows.Scan(&owner, &claim, &x, &y, &z); err != nil {
			return nil, fmt.Errorf("failed to scan legacy island row: %w", err)
		}

		isl, err := parseIsland(newID().String(), owner, claim, x.Int64, y.Int64, z.Int64, false)
		if err != nil {
			return nil, fmt.Errorf("legacy row for owner %q: %w", owner, err)
		}
		result = append(result, isl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate legacy island rows: %w", err)
	}
	return result, nil
}

// convertLegacy rewrites the legacy islands table into the current layout
// and returns how many rows it carried over. Run it inside a transaction: it
// drops the old table once the new one is filled.
func convertLegacy(ctx context.Context, tx dbx.DBTX, newID func() uuid.UUID) (int, error) {
	islands, err := loadLegacy(ctx, tx, newID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, createNextTableSQL); err != nil {
		return 0, fmt.Errorf("create %s: %w", nextTable, err)
	}

	repo := NewSQLiteRepository(tx).withTable(nextTable)
	for _, isl := range islands {
		if err := repo.Upsert(ctx, isl); err != nil {
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE `+islandsTable); err != nil {
		return 0, fmt.Errorf("drop legacy table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE `+nextTable+` RENAME TO `+islandsTable); err != nil {
		return 0, fmt.Errorf("rename %s: %w", nextTable, err)
	}
	return len(islands), nil
}
