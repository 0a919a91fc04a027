// Package perception tracks which zombies currently have the player in
// sight, and records where sight was lost. The tracker replays every
// intermediate cell of the player's resolved move, so an agent that
// glimpses the player mid-path still ends up with a correct last-seen
// coordinate.
package perception

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/grid"
	"github.com/talgya/deadgrid/internal/vision"
)

// Tracker owns the ephemeral sight records. An entry exists only while
// that zombie has the player in sight; it is deleted the instant sight is
// lost, after its position is copied into the zombie's LastSeenCoords.
type Tracker struct {
	// records maps zombie ID → last player cell confirmed visible.
	records map[uuid.UUID]grid.Coord

	// SightRange caps the zombies' perception distance.
	SightRange float64
}

// NewTracker creates an empty tracker with the default sight range.
func NewTracker() *Tracker {
	return &Tracker{
		records:    make(map[uuid.UUID]grid.Coord),
		SightRange: vision.DefaultMaxRange,
	}
}

// Spotted reports whether the zombie currently has the player in sight.
func (t *Tracker) Spotted(id uuid.UUID) bool {
	_, ok := t.records[id]
	return ok
}

// Record returns the last player cell this zombie confirmed visible.
func (t *Tracker) Record(id uuid.UUID) (grid.Coord, bool) {
	at, ok := t.records[id]
	return at, ok
}

// Forget drops a zombie's record, used when the zombie leaves play.
func (t *Tracker) Forget(id uuid.UUID) {
	delete(t.records, id)
}

// UpdateTracking replays the player's resolved movement path and updates
// every zombie's sight state once per cell. A nil or empty path evaluates
// the player's current position once. Transitions:
//
//   - no record, sight clear  → newly spotted, record created
//   - record, sight clear     → record updated to the current cell
//   - record, sight lost      → LastSeen set, LastSeenCoords copied from
//     the record (the last cell confirmed visible, never a later cell),
//     record deleted
func (t *Tracker) UpdateTracking(m *grid.Map, player *actor.Player, path []grid.Coord, zombies []*actor.Zombie) error {
	if m == nil {
		return errors.New("perception: nil map")
	}
	if player == nil {
		return errors.New("perception: nil player")
	}

	if len(path) == 0 {
		path = []grid.Coord{player.Pos()}
	}

	for _, playerCell := range path {
		for _, z := range zombies {
			if !z.Alive() {
				continue
			}
			t.observe(m, z, playerCell)
		}
	}
	return nil
}

// observe runs one zombie's sight transition against one player cell.
func (t *Tracker) observe(m *grid.Map, z *actor.Zombie, playerCell grid.Coord) {
	res, err := vision.HasLineOfSight(m, z.Pos(), playerCell, vision.Options{
		MaxRange: t.SightRange,
	})
	if err != nil {
		slog.Warn("perception sight check failed", "zombie", z.Label(), "error", err)
		return
	}

	lastConfirmed, tracking := t.records[z.UUID]

	switch {
	case res.Clear && !tracking:
		t.records[z.UUID] = playerCell
		slog.Debug("zombie spotted player", "zombie", z.Label(), "at", playerCell)

	case res.Clear && tracking:
		t.records[z.UUID] = playerCell

	case !res.Clear && tracking:
		z.LastSeen = true
		z.LastSeenCoords = lastConfirmed
		delete(t.records, z.UUID)
		slog.Debug("zombie lost sight of player",
			"zombie", z.Label(),
			"last_seen", lastConfirmed,
			"blocked_by", res.BlockedBy,
		)
	}
}
