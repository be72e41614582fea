package islands

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/mohron/skyclaims-store/internal/dbx"
)

const islandsTable = "islands"

// Repository is the row-level access the Store builds on.
type Repository interface {
	// Upsert inserts the island or replaces every column of the existing row.
	Upsert(ctx context.Context, isl Island) error

	// DeleteByID removes the row for id. It returns ErrIslandNotFound when
	// no row matched.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// GetAll scans the whole table. One malformed row fails the call.
	GetAll(ctx context.Context) (map[uuid.UUID]Island, error)
}

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db    dbx.DBTX
	table string
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, table: islandsTable}
}

// WithDB returns a copy of r bound to db, typically a transaction.
func (r *SQLiteRepository) WithDB(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, table: r.table}
}

// withTable points r at another table with the current column layout. The
// legacy conversion fills islands_next this way before swapping it in.
func (r *SQLiteRepository) withTable(table string) *SQLiteRepository {
	return &SQLiteRepository{db: r.db, table: table}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, isl Island) error {
	query := fmt.Sprintf(`INSERT INTO %s (island, owner, claim, spawnX, spawnY, spawnZ, locked)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(island) DO UPDATE SET owner = excluded.owner,
				claim = excluded.claim,
				spawnX = excluded.spawnX,
				spawnY = excluded.spawnY,
				spawnZ = excluded.spawnZ,
				locked = excluded.locked`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		isl.ID.String(), isl.Owner.String(), isl.ClaimID.String(),
		isl.Spawn.X, isl.Spawn.Y, isl.Spawn.Z, isl.Locked)
	if err != nil {
		return fmt.Errorf("failed to upsert island %s: %w", isl.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE island = ?`, r.table)
	res, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete island %s: %w", id, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("%w: %s", ErrIslandNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) (map[uuid.UUID]Island, error) {
	query := fmt.Sprintf(`SELECT island, owner, claim, spawnX, spawnY, spawnZ, locked FROM %s`, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select islands: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]Island)
	for rows.Next() {
		var (
			id, owner, claim string
			x, y, z          int64
			locked           bool
		)
		if err := rows.Scan(&id, &owner, &claim, &x, &y, &z, &locked); err != nil {
			return nil, fmt.Errorf("failed to scan island row: %w", err)
		}

		isl, err := parseIsland(id, owner, claim, x, y, z, locked)
		if err != nil {
			return nil, err
		}
		result[isl.ID] = isl
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate island rows: %w", err)
	}
	return result, nil
}

func parseIsland(id, owner, claim string, x, y, z int64, locked bool) (Island, error) {
	var (
		isl Island
		err error
	)
	if isl.ID, err = uuid.Parse(id); err != nil {
		return Island{}, fmt.Errorf("island %q: bad island id: %w", id, err)
	}
	if isl.Owner, err = uuid.Parse(owner); err != nil {
		return Island{}, fmt.Errorf("island %q: bad owner id: %w", id, err)
	}
	if isl.ClaimID, err = uuid.Parse(claim); err != nil {
		return Island{}, fmt.Errorf("island %q: bad claim id: %w", id, err)
	}
	if isl.Spawn, err = parseSpawn(x, y, z); err != nil {
		return Island{}, fmt.Errorf("island %q: %w", id, err)
	}
	isl.Locked = locked
	return isl, nil
}

func parseSpawn(x, y, z int64) (Spawn, error) {
	for _, v := range [...]int64{x, y, z} {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return Spawn{}, fmt.Errorf("spawn coordinate %d out of range", v)
		}
	}
	return Spawn{X: int32(x), Y: int32(y), Z: int32(z)}, nil
}
