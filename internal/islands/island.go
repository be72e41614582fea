package islands

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Spawn is a block coordinate inside an island.
type Spawn struct {
	X, Y, Z int32
}

func (s Spawn) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.X, s.Y, s.Z)
}

// Island is one claimed sky island.
type Island struct {
	// ID is assigned once, when the island is created, and never changes.
	ID uuid.UUID

	// Owner is the owning player. Nothing here stops one player from owning
	// several islands.
	Owner uuid.UUID

	// ClaimID is the claimed region in the game world.
	ClaimID uuid.UUID

	Spawn  Spawn
	Locked bool
}

// NewIsland returns an unlocked island with a freshly generated ID.
func NewIsland(owner, claim uuid.UUID, spawn Spawn) Island {
	return Island{ID: uuid.New(), Owner: owner, ClaimID: claim, Spawn: spawn}
}

func (i Island) validate() error {
	if i.ID == uuid.Nil {
		return fmt.Errorf("%w: nil island id", ErrInvalidIsland)
	}
	return nil
}

// sortedIslands returns the islands ordered by ID so bulk writes happen in a
// stable order. A key that disagrees with its island's ID is rejected.
func sortedIslands(m map[uuid.UUID]Island) ([]Island, error) {
	out := make([]Island, 0, len(m))
	for id, isl := range m {
		if id != isl.ID {
			return nil, fmt.Errorf("%w: keyed as %s but has id %s", ErrInvalidIsland, id, isl.ID)
		}
		out = append(out, isl)
	}
	slices.SortFunc(out, func(a, b Island) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}
