package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mohron/skyclaims-store/internal/islands"
)

func TestRun_InitializesAndIsRepeatable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	args := []string{"-l", dir, "-n", "skyclaims", "-v", "error"}

	require.NoError(t, run(args))
	require.NoError(t, run(args))

	ctx := context.Background()
	s, err := islands.Open(ctx, islands.Options{Dir: dir, Name: "skyclaims"})
	require.NoError(t, err)
	defer s.Close()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	isl := islands.NewIsland(uuid.New(), uuid.New(), islands.Spawn{Y: 64})
	require.NoError(t, s.Save(ctx, isl))
	require.NoError(t, run(args))
}

func TestRun_BadConfig(t *testing.T) {
	require.Error(t, run([]string{"-t", "0"}))
}
