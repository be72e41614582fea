package islands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mohron/skyclaims-store/internal/dbx"
	"github.com/mohron/skyclaims-store/internal/logging"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const defaultSchemaTimeout = 30 * time.Second

// Options configures Open.
type Options struct {
	// Dir is created if missing. The file is Dir/Name.db.
	Dir  string
	Name string

	// SchemaTimeout bounds Initialize. Zero means 30s.
	SchemaTimeout time.Duration

	// Logger receives every failure the store reports. Nil discards.
	Logger logging.Logger
}

// Store persists islands in one SQLite file.
type Store struct {
	db            *sql.DB
	repo          *SQLiteRepository
	log           logging.Logger
	path          string
	schemaTimeout time.Duration
	newID         func() uuid.UUID
}

// Open creates the directory and database file if needed and checks that the
// file is usable. Call Initialize and Migrate before using the store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: database name is required", ErrInitFailed)
	}
	if opts.SchemaTimeout <= 0 {
		opts.SchemaTimeout = defaultSchemaTimeout
	}

	path := filepath.Join(opts.Dir, opts.Name+".db")
	log = log.With("db", path)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			log.Error(ctx, "unable to create database directory", "error", err)
			return nil, fmt.Errorf("%w: create %s: %w", ErrInitFailed, opts.Dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		log.Error(ctx, "unable to open database", "error", err)
		return nil, fmt.Errorf("%w: open %s: %w", ErrInitFailed, path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		log.Error(ctx, "unable to reach database", "error", err)
		return nil, fmt.Errorf("%w: ping %s: %w", ErrInitFailed, path, err)
	}

	return &Store{
		db:            db,
		repo:          NewSQLiteRepository(db),
		log:           log,
		path:          path,
		schemaTimeout: opts.SchemaTimeout,
		newID:         uuid.New,
	}, nil
}

// Close releases the database handle. It is safe on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path is the database file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// Initialize makes sure the islands table exists. It is idempotent and runs
// under the schema timeout. A table left in the legacy layout is not touched
// here; Migrate converts it.
func (s *Store) Initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.schemaTimeout)
	defer cancel()

	p, err := newMigrationProvider(s.db, s.conversion())
	if err != nil {
		s.log.Error(ctx, "unable to load schema migrations", "error", err)
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	if _, err := p.UpTo(ctx, versionCreate); err != nil {
		s.log.Error(ctx, "unable to create islands table", "error", err)
		return fmt.Errorf("%w: create islands table: %w", ErrInitFailed, err)
	}
	return nil
}

// Migrate brings the schema to the latest version, converting a legacy
// table if one is found. A current table is left as is.
func (s *Store) Migrate(ctx context.Context) (MigrationReport, error) {
	from, err := detectSchema(ctx, s.db, islandsTable)
	if err != nil {
		s.log.Error(ctx, "unable to inspect islands table", "error", err)
		return MigrationReport{}, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	report := MigrationReport{From: from}
	if from == SchemaUnknown {
		s.log.Error(ctx, "islands table has an unrecognised layout")
		return report, ErrUnknownSchema
	}

	conv := s.conversion()
	p, err := newMigrationProvider(s.db, conv)
	if err != nil {
		s.log.Error(ctx, "unable to load schema migrations", "error", err)
		return report, fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		s.log.Error(ctx, "schema migration failed", "from", from, "error", err)
		return report, fmt.Errorf("%w: migrate from %s schema: %w", ErrWriteFailed, from, err)
	}

	report.Applied = appliedVersions(results)
	report.Converted = conv.converted
	if len(report.Applied) > 0 {
		s.log.Info(ctx, "islands schema migrated", "from", from, "applied", report.Applied, "converted", report.Converted)
	}
	return report, nil
}

// SchemaVersion returns the latest schema version applied to the file.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	p, err := newMigrationProvider(s.db, s.conversion())
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}

func (s *Store) conversion() *legacyConversion {
	return &legacyConversion{log: s.log, newID: s.newID}
}

// LoadAll returns every stored island keyed by ID. Any unreadable row fails
// the whole call with ErrReadFailed and a nil map; an empty table gives an
// empty map.
func (s *Store) LoadAll(ctx context.Context) (map[uuid.UUID]Island, error) {
	islands, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Error(ctx, "unable to read islands", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	s.log.Debug(ctx, "loaded islands", "count", len(islands))
	return islands, nil
}

// Save inserts isl or replaces its stored row.
func (s *Store) Save(ctx context.Context, isl Island) error {
	if err := isl.validate(); err != nil {
		s.log.Error(ctx, "refusing to save island", "error", err)
		return err
	}
	if err := s.repo.Upsert(ctx, isl); err != nil {
		s.log.Error(ctx, "error saving island", "island", isl.ID, "owner", isl.Owner, "error", err)
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// SaveAll saves each island in ID order, one statement per island and no
// transaction around them. It stops at the first failure: islands before it
// stay written, islands after it are not attempted.
func (s *Store) SaveAll(ctx context.Context, islands map[uuid.UUID]Island) error {
	ordered, err := sortedIslands(islands)
	if err != nil {
		s.log.Error(ctx, "refusing to save islands", "error", err)
		return err
	}

	for i, isl := range ordered {
		if err := s.Save(ctx, isl); err != nil {
			return fmt.Errorf("saved %d of %d islands: %w", i, len(ordered), err)
		}
	}
	return nil
}

// SaveAllAtomic writes every island in one transaction: all of them persist
// or none do.
func (s *Store) SaveAllAtomic(ctx context.Context, islands map[uuid.UUID]Island) error {
	ordered, err := sortedIslands(islands)
	if err != nil {
		s.log.Error(ctx, "refusing to save islands", "error", err)
		return err
	}
	for _, isl := range ordered {
		if err := isl.validate(); err != nil {
			s.log.Error(ctx, "refusing to save islands", "error", err)
			return err
		}
	}

	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo.WithDB(tx)
		for _, isl := range ordered {
			if err := repo.Upsert(ctx, isl); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "error saving islands", "count", len(ordered), "error", err)
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Remove deletes the row for isl.ID. A missing row is reported as
// ErrIslandNotFound.
func (s *Store) Remove(ctx context.Context, isl Island) error {
	err := s.repo.DeleteByID(ctx, isl.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrIslandNotFound):
		s.log.Warn(ctx, "island to remove is not stored", "island", isl.ID)
		return err
	default:
		s.log.Error(ctx, "error removing island", "island", isl.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
}
