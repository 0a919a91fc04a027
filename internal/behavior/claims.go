// Package behavior runs one zombie's turn: the fixed-priority resolver
// over the four perception flags, the shared claimed-tile set, and the
// cardinal approach list built at each player-turn boundary.
package behavior

import (
	"github.com/google/uuid"

	"github.com/talgya/deadgrid/internal/grid"
)

// ClaimedTileSet coordinates investigate targets across one zombie phase.
// The orchestrator constructs a fresh set at phase start and passes it into
// every turn call; access is strictly sequential, so no locking is needed.
type ClaimedTileSet map[grid.Coord]uuid.UUID

// NewClaimedTileSet returns an empty phase-scoped claim set.
func NewClaimedTileSet() ClaimedTileSet {
	return make(ClaimedTileSet)
}

// Claim records that an agent is heading for a coordinate. Claiming a tile
// already claimed by the same agent is a no-op.
func (s ClaimedTileSet) Claim(at grid.Coord, agent uuid.UUID) {
	s[at] = agent
}

// ClaimedByOther reports whether a different agent already claimed the tile.
func (s ClaimedTileSet) ClaimedByOther(at grid.Coord, agent uuid.UUID) bool {
	owner, ok := s[at]
	return ok && owner != agent
}

// Len returns the number of claimed tiles this phase.
func (s ClaimedTileSet) Len() int { return len(s) }
