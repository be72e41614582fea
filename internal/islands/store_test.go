package islands

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohron/skyclaims-store/internal/logging"
)

const createLegacySQL = `
CREATE TABLE IF NOT EXISTS islands (
  owner STRING PRIMARY KEY,
  id    STRING,
  x     INT,
  y     INT,
  z     INT,
  world STRING
);`

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	return openRawDBAt(t, filepath.Join(t.TempDir(), "raw.db"))
}

func openRawDBAt(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Dir:    filepath.Join(t.TempDir(), "skyclaims"),
		Name:   "skyclaims",
		Logger: logging.Discard(),
	}
}

func openStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := Open(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newStore returns an initialized, fully migrated store.
func newStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := openStore(t, testOptions(t))
	require.NoError(t, s.Initialize(ctx))
	_, err := s.Migrate(ctx)
	require.NoError(t, err)
	return s
}

func islandMap(islands ...Island) map[uuid.UUID]Island {
	m := make(map[uuid.UUID]Island, len(islands))
	for _, isl := range islands {
		m[isl.ID] = isl
	}
	return m
}

func failInsertsOf(t *testing.T, s *Store, id uuid.UUID) {
	t.Helper()
	_, err := s.db.Exec(fmt.Sprintf(`CREATE TRIGGER fail_insert BEFORE INSERT ON islands
		WHEN NEW.island = '%s'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`, id))
	require.NoError(t, err)
}

func TestOpen_CreatesFileUnderDir(t *testing.T) {
	opts := testOptions(t)
	s := openStore(t, opts)

	assert.Equal(t, filepath.Join(opts.Dir, "skyclaims.db"), s.Path())
	require.NoError(t, s.Initialize(context.Background()))

	_, err := os.Stat(s.Path())
	require.NoError(t, err)
}

func TestOpen_Failures(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		opts := testOptions(t)
		opts.Name = ""
		_, err := Open(context.Background(), opts)
		require.ErrorIs(t, err, ErrInitFailed)
	})

	t.Run("dir under a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "plain")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

		opts := testOptions(t)
		opts.Dir = filepath.Join(file, "sub")
		_, err := Open(context.Background(), opts)
		require.ErrorIs(t, err, ErrInitFailed)
	})
}

func TestClose_NilSafe(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
}

func TestInitialize_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, testOptions(t))

	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))

	state, err := detectSchema(ctx, s.db, islandsTable)
	require.NoError(t, err)
	assert.Equal(t, SchemaCurrent, state)

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, versionCreate, v)
}

func TestInitialize_CanceledContext(t *testing.T) {
	s := openStore(t, testOptions(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Initialize(ctx), ErrInitFailed)
}

func TestSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	isl := Island{
		ID:      uuid.New(),
		Owner:   uuid.New(),
		ClaimID: uuid.New(),
		Spawn:   Spawn{X: 10, Y: 64, Z: -5},
		Locked:  true,
	}
	require.NoError(t, s.Save(ctx, isl))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Contains(t, got, isl.ID)
	assert.Equal(t, isl, got[isl.ID])
	assert.Equal(t, Spawn{X: 10, Y: 64, Z: -5}, got[isl.ID].Spawn)
	assert.True(t, got[isl.ID].Locked)
}

func TestSave_UpsertKeepsOneRowWithLatestValues(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	isl := NewIsland(uuid.New(), uuid.New(), Spawn{X: 1, Y: 2, Z: 3})
	require.NoError(t, s.Save(ctx, isl))

	isl.Spawn = Spawn{X: 4, Y: 5, Z: 6}
	isl.Locked = true
	require.NoError(t, s.Save(ctx, isl))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM islands WHERE island = ?`, isl.ID.String()).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, isl, got[isl.ID])
}

func TestSave_RejectsNilID(t *testing.T) {
	s := newStore(t)
	err := s.Save(context.Background(), Island{Owner: uuid.New()})
	require.ErrorIs(t, err, ErrInvalidIsland)
}

func TestSave_WriteFailureIsLoggedAndReturned(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log, err := logging.New(&buf, "debug", "text")
	require.NoError(t, err)

	opts := testOptions(t)
	opts.Logger = log
	s := openStore(t, opts)
	require.NoError(t, s.Initialize(ctx))

	isl := NewIsland(uuid.New(), uuid.New(), Spawn{})
	failInsertsOf(t, s, isl.ID)

	err = s.Save(ctx, isl)
	require.ErrorIs(t, err, ErrWriteFailed)
	assert.Contains(t, buf.String(), "error saving island")
	assert.Contains(t, buf.String(), isl.ID.String())
}

func TestRemove_DeletesExactlyOneRow(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	owner := uuid.New()
	a := NewIsland(owner, uuid.New(), Spawn{X: 1})
	b := NewIsland(owner, uuid.New(), Spawn{X: 2})
	c := NewIsland(uuid.New(), uuid.New(), Spawn{X: 3})
	require.NoError(t, s.SaveAll(ctx, islandMap(a, b, c)))

	require.NoError(t, s.Remove(ctx, b))

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, islandMap(a, c), got)

	require.ErrorIs(t, s.Remove(ctx, b), ErrIslandNotFound)
}

func TestLoadAll_EmptyAndMalformed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, NewIsland(uuid.New(), uuid.New(), Spawn{})))
	_, err = s.db.Exec(`INSERT INTO islands VALUES (?, 'broken', ?, 0, 0, 0, 0)`, uuid.NewString(), uuid.NewString())
	require.NoError(t, err)

	got, err = s.LoadAll(ctx)
	require.ErrorIs(t, err, ErrReadFailed)
	assert.Nil(t, got)
}

func TestSaveAll_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	m := make(map[uuid.UUID]Island)
	for i := range 5 {
		isl := NewIsland(uuid.New(), uuid.New(), Spawn{X: int32(i)})
		m[isl.ID] = isl
	}
	ordered, err := sortedIslands(m)
	require.NoError(t, err)
	failInsertsOf(t, s, ordered[2].ID)

	err = s.SaveAll(ctx, m)
	require.ErrorIs(t, err, ErrWriteFailed)

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, islandMap(ordered[0], ordered[1]), got)
	for _, isl := range ordered[2:] {
		assert.NotContains(t, got, isl.ID)
	}
}

func TestSaveAll_RejectsMismatchedKey(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	isl := NewIsland(uuid.New(), uuid.New(), Spawn{})
	err := s.SaveAll(ctx, map[uuid.UUID]Island{uuid.New(): isl})
	require.ErrorIs(t, err, ErrInvalidIsland)

	got, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveAllAtomic(t *testing.T) {
	ctx := context.Background()

	islands := make([]Island, 5)
	for i := range islands {
		islands[i] = NewIsland(uuid.New(), uuid.New(), Spawn{Y: int32(60 + i)})
	}
	m := islandMap(islands...)

	t.Run("all persist", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAllAtomic(ctx, m))

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, m, got)
	})

	t.Run("none persist on failure", func(t *testing.T) {
		s := newStore(t)
		ordered, err := sortedIslands(m)
		require.NoError(t, err)
		failInsertsOf(t, s, ordered[2].ID)

		require.ErrorIs(t, s.SaveAllAtomic(ctx, m), ErrWriteFailed)

		got, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	opts := testOptions(t)

	first, err := Open(ctx, opts)
	require.NoError(t, err)
	require.NoError(t, first.Initialize(ctx))
	_, err = first.Migrate(ctx)
	require.NoError(t, err)

	isl := NewIsland(uuid.New(), uuid.New(), Spawn{X: 7, Y: 80, Z: 7})
	require.NoError(t, first.Save(ctx, isl))
	require.NoError(t, first.Close())

	second := openStore(t, opts)
	require.NoError(t, second.Initialize(ctx))
	report, err := second.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaCurrent, report.From)
	assert.Empty(t, report.Applied)

	got, err := second.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, islandMap(isl), got)
}
