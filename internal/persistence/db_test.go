package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/engine"
	"github.com/talgya/deadgrid/internal/grid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestZombies_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	z := actor.NewZombie(actor.KindRunner)
	z.Loc = grid.Coord{X: 7, Y: 3}
	z.LastSeen = true
	z.LastSeenCoords = grid.Coord{X: 9, Y: 2}
	z.HeardNoise = true
	z.NoiseCoords = grid.Coord{X: 1, Y: 8}
	z.AP = 5
	z.HP = 2
	z.BehaviorLabel = "investigate"

	quiet := actor.NewZombie(actor.KindBrute)
	quiet.Loc = grid.Coord{X: 0, Y: 0}

	if err := db.SaveZombies([]*actor.Zombie{z, quiet}); err != nil {
		t.Fatal(err)
	}
	loaded, err := db.LoadZombies()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d zombies, want 2", len(loaded))
	}

	var got *actor.Zombie
	for _, l := range loaded {
		if l.UUID == z.UUID {
			got = l
		}
	}
	if got == nil {
		t.Fatal("saved zombie missing after load")
	}

	if got.Kind != actor.KindRunner {
		t.Errorf("kind = %s, want runner", got.Kind)
	}
	if got.Loc != z.Loc {
		t.Errorf("loc = %s, want %s", got.Loc, z.Loc)
	}
	if !got.LastSeen || got.LastSeenCoords != z.LastSeenCoords {
		t.Errorf("last-seen = %v at %s, want true at %s", got.LastSeen, got.LastSeenCoords, z.LastSeenCoords)
	}
	if !got.HeardNoise || got.NoiseCoords != z.NoiseCoords {
		t.Errorf("noise = %v at %s, want true at %s", got.HeardNoise, got.NoiseCoords, z.NoiseCoords)
	}
	if got.MaxAP != z.MaxAP || got.AP != 5 || got.HP != 2 {
		t.Errorf("budget = %d/%d hp %d, want %d/5 hp 2", got.MaxAP, got.AP, got.HP, z.MaxAP)
	}
	if got.BehaviorLabel != "investigate" {
		t.Errorf("behavior label = %q, want investigate", got.BehaviorLabel)
	}
}

func TestSaveZombies_FullReplace(t *testing.T) {
	db := openTestDB(t)

	first := actor.NewZombie(actor.KindShambler)
	if err := db.SaveZombies([]*actor.Zombie{first}); err != nil {
		t.Fatal(err)
	}

	second := actor.NewZombie(actor.KindShambler)
	if err := db.SaveZombies([]*actor.Zombie{second}); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadZombies()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].UUID != second.UUID {
		t.Errorf("save must replace the previous horde, got %d rows", len(loaded))
	}
}

func TestLoadZombies_UnknownKindRejected(t *testing.T) {
	db := openTestDB(t)

	_, err := db.conn.Exec(`INSERT INTO zombies
		(id, kind, x, y, last_seen, last_seen_x, last_seen_y,
		 heard_noise, noise_x, noise_y, max_ap, ap, hp, behavior)
		VALUES ('not-a-uuid', 'lich', 0, 0, 0, 0, 0, 0, 0, 0, 8, 8, 6, '')`)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.LoadZombies(); err == nil {
		t.Error("unknown variant discriminator should fail the load")
	}
}

func TestPlayer_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	if p, err := db.LoadPlayer(); err != nil || p != nil {
		t.Fatalf("empty db: player = %v, err = %v, want nil/nil", p, err)
	}

	p := actor.NewPlayer("survivor")
	p.Loc = grid.Coord{X: 11, Y: 6}
	p.AP = 3
	p.HP = 14

	if err := db.SavePlayer(p); err != nil {
		t.Fatal(err)
	}
	loaded, err := db.LoadPlayer()
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("player missing after save")
	}
	if loaded.UUID != p.UUID || loaded.Name != p.Name || loaded.Loc != p.Loc {
		t.Errorf("loaded %s %s at %s, want %s %s at %s",
			loaded.UUID, loaded.Name, loaded.Loc, p.UUID, p.Name, p.Loc)
	}
	if loaded.AP != 3 || loaded.HP != 14 {
		t.Errorf("AP/HP = %d/%d, want 3/14", loaded.AP, loaded.HP)
	}
}

func TestEventsAndMeta(t *testing.T) {
	db := openTestDB(t)

	events := []engine.Event{
		{Turn: 1, Description: "shambler strikes survivor", Category: "attack"},
		{Turn: 2, Description: "survivor moves to (3,4)", Category: "player"},
		{Turn: 3, Description: "survivor has fallen", Category: "death"},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatal(err)
	}

	recent, err := db.RecentEvents(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d events, want 2", len(recent))
	}
	// Most recent first.
	if recent[0].Turn != 3 || recent[1].Turn != 2 {
		t.Errorf("recent order = turns %d,%d, want 3,2", recent[0].Turn, recent[1].Turn)
	}

	if err := db.SaveMeta("last_turn", "3"); err != nil {
		t.Fatal(err)
	}
	if v, err := db.GetMeta("last_turn"); err != nil || v != "3" {
		t.Errorf("meta = %q, err = %v, want 3", v, err)
	}
	if err := db.SaveMeta("last_turn", "4"); err != nil {
		t.Fatal(err)
	}
	if v, _ := db.GetMeta("last_turn"); v != "4" {
		t.Errorf("meta after replace = %q, want 4", v)
	}
}

func TestSaveWorldState(t *testing.T) {
	db := openTestDB(t)

	m := grid.NewMap(8, 8)
	player := actor.NewPlayer("survivor")
	if err := m.PlaceEntity(player, grid.Coord{X: 4, Y: 4}); err != nil {
		t.Fatal(err)
	}
	z := actor.NewZombie(actor.KindShambler)
	if err := m.PlaceEntity(z, grid.Coord{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}

	sim := engine.NewSimulation(m, player, []*actor.Zombie{z})
	if err := sim.RunTurn(); err != nil {
		t.Fatal(err)
	}

	if db.HasWorldState() {
		t.Error("fresh db claims to hold a save")
	}
	if err := db.SaveWorldState(sim); err != nil {
		t.Fatal(err)
	}
	if !db.HasWorldState() {
		t.Error("save not detected")
	}
	if v, err := db.GetMeta("last_turn"); err != nil || v != "1" {
		t.Errorf("last_turn = %q, err = %v, want 1", v, err)
	}
}
