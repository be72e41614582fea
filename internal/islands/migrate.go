package islands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/mohron/skyclaims-store/internal/islands/migrations"
	"github.com/mohron/skyclaims-store/internal/logging"
)

const (
	versionCreate  int64 = 1
	versionConvert int64 = 2
)

// MigrationReport describes what Migrate found and did.
type MigrationReport struct {
	// From is the table shape before migrating.
	From SchemaState
	// Converted counts legacy rows rewritten into the current layout.
	Converted int
	// Applied lists the schema versions applied by this call.
	Applied []int64
}

// legacyConversion is goose migration 2. It records what it did so Migrate
// can report it.
type legacyConversion struct {
	log       logging.Logger
	newID     func() uuid.UUID
	converted int
}

func (c *legacyConversion) up(ctx context.Context, tx *sql.Tx) error {
	state, err := detectSchema(ctx, tx, islandsTable)
	if err != nil {
		return err
	}

	switch state {
	case SchemaCurrent:
		return nil
	case SchemaLegacy:
		n, err := convertLegacy(ctx, tx, c.newID)
		if err != nil {
			return err
		}
		c.converted = n
		c.log.Info(ctx, "converted legacy islands table", "islands", n)
		return nil
	default:
		return fmt.Errorf("%w: table is %s", ErrUnknownSchema, state)
	}
}

func newMigrationProvider(db *sql.DB, conv *legacyConversion) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectSQLite3, db, migrations.FS,
		goose.WithGoMigrations(
			// Legacy conversion is one-way; there is no down migration.
			goose.NewGoMigration(versionConvert,
				&goose.GoFunc{RunTx: conv.up, Mode: goose.TransactionEnabled},
				nil,
			),
		),
	)
}

func appliedVersions(results []*goose.MigrationResult) []int64 {
	versions := make([]int64, 0, len(results))
	for _, r := range results {
		versions = append(versions, r.Source.Version)
	}
	return versions
}
