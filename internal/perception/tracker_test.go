package perception

import (
	"testing"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/grid"
)

func openMap(w, h int) *grid.Map {
	return grid.NewMap(w, h)
}

func zombieAt(x, y int) *actor.Zombie {
	z := actor.NewZombie(actor.KindShambler)
	z.Loc = grid.Coord{X: x, Y: y}
	return z
}

func playerAt(x, y int) *actor.Player {
	p := actor.NewPlayer("survivor")
	p.Loc = grid.Coord{X: x, Y: y}
	return p
}

func TestUpdateTracking_SpotTrackLose(t *testing.T) {
	m := openMap(12, 12)
	tr := NewTracker()
	tr.SightRange = 3

	z := zombieAt(0, 0)
	p := playerAt(1, 0)

	// Standing in plain sight creates a record.
	if err := tr.UpdateTracking(m, p, nil, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	if !tr.Spotted(z.UUID) {
		t.Fatal("zombie in range should be tracking the player")
	}
	if at, _ := tr.Record(z.UUID); at != (grid.Coord{X: 1, Y: 0}) {
		t.Errorf("record = %s, want (1,0)", at)
	}

	// Moving within range updates the record to the newest cell.
	p.Loc = grid.Coord{X: 3, Y: 0}
	path := []grid.Coord{{X: 2, Y: 0}, {X: 3, Y: 0}}
	if err := tr.UpdateTracking(m, p, path, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	if at, _ := tr.Record(z.UUID); at != (grid.Coord{X: 3, Y: 0}) {
		t.Errorf("record = %s, want (3,0)", at)
	}
	if z.LastSeen {
		t.Error("LastSeen must stay false while sight holds")
	}

	// Stepping out of range flips the zombie to last-seen mode, pinned to
	// the last cell it actually confirmed.
	p.Loc = grid.Coord{X: 4, Y: 0}
	if err := tr.UpdateTracking(m, p, []grid.Coord{{X: 4, Y: 0}}, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	if tr.Spotted(z.UUID) {
		t.Error("record must be deleted once sight is lost")
	}
	if !z.LastSeen {
		t.Fatal("losing sight should set LastSeen")
	}
	if z.LastSeenCoords != (grid.Coord{X: 3, Y: 0}) {
		t.Errorf("LastSeenCoords = %s, want (3,0)", z.LastSeenCoords)
	}
}

func TestUpdateTracking_MidPathGlimpse(t *testing.T) {
	m := openMap(12, 12)
	tr := NewTracker()
	tr.SightRange = 3

	z := zombieAt(0, 0)
	p := playerAt(3, 3)

	// (3,3) is out of range from (0,0), (2,2) is within. The player's path
	// dips into range for exactly one cell; the zombie must come out of it
	// with a last-seen record at that cell.
	path := []grid.Coord{{X: 3, Y: 3}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	if err := tr.UpdateTracking(m, p, path, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}

	if tr.Spotted(z.UUID) {
		t.Error("sight ended out of range, record should be gone")
	}
	if !z.LastSeen {
		t.Fatal("glimpse should leave the zombie in last-seen mode")
	}
	if z.LastSeenCoords != (grid.Coord{X: 2, Y: 2}) {
		t.Errorf("LastSeenCoords = %s, want the one confirmed cell (2,2)", z.LastSeenCoords)
	}
}

func TestUpdateTracking_WallBreaksSight(t *testing.T) {
	m := openMap(10, 3)
	m.SetTerrain(grid.Coord{X: 3, Y: 1}, grid.TerrainWall)

	tr := NewTracker()
	z := zombieAt(0, 1)
	p := playerAt(2, 1)

	if err := tr.UpdateTracking(m, p, nil, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	if !tr.Spotted(z.UUID) {
		t.Fatal("player before the wall should be visible")
	}

	// One step puts the wall between them.
	p.Loc = grid.Coord{X: 4, Y: 1}
	if err := tr.UpdateTracking(m, p, []grid.Coord{{X: 4, Y: 1}}, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	if !z.LastSeen || z.LastSeenCoords != (grid.Coord{X: 2, Y: 1}) {
		t.Errorf("LastSeen=%v at %s, want true at (2,1)", z.LastSeen, z.LastSeenCoords)
	}
}

func TestUpdateTracking_DeadZombiesSkipped(t *testing.T) {
	m := openMap(8, 8)
	tr := NewTracker()

	z := zombieAt(0, 0)
	z.HP = 0
	p := playerAt(1, 0)

	if err := tr.UpdateTracking(m, p, nil, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	if tr.Spotted(z.UUID) {
		t.Error("dead zombies must not perceive")
	}
}

func TestUpdateTracking_Preconditions(t *testing.T) {
	tr := NewTracker()
	p := playerAt(0, 0)

	if err := tr.UpdateTracking(nil, p, nil, nil); err == nil {
		t.Error("nil map should be a usage error")
	}
	if err := tr.UpdateTracking(openMap(4, 4), nil, nil, nil); err == nil {
		t.Error("nil player should be a usage error")
	}
}

func TestForget(t *testing.T) {
	m := openMap(8, 8)
	tr := NewTracker()
	z := zombieAt(0, 0)
	p := playerAt(1, 0)

	if err := tr.UpdateTracking(m, p, nil, []*actor.Zombie{z}); err != nil {
		t.Fatal(err)
	}
	tr.Forget(z.UUID)
	if tr.Spotted(z.UUID) {
		t.Error("Forget should drop the record")
	}
}
