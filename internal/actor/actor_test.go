package actor

import (
	"testing"

	"github.com/talgya/deadgrid/internal/grid"
)

func TestKindDefaults(t *testing.T) {
	tests := []struct {
		kind  Kind
		maxAP int
		hp    int
	}{
		{KindShambler, 8, 6},
		{KindRunner, 12, 4},
		{KindBrute, 6, 12},
	}
	for _, tt := range tests {
		z := NewZombie(tt.kind)
		if z.MaxAP != tt.maxAP || z.HP != tt.hp {
			t.Errorf("%s: AP/HP = %d/%d, want %d/%d", tt.kind, z.MaxAP, z.HP, tt.maxAP, tt.hp)
		}
		if z.AP != z.MaxAP {
			t.Errorf("%s: fresh zombie AP = %d, want full %d", tt.kind, z.AP, z.MaxAP)
		}
		if !z.Alive() {
			t.Errorf("%s: fresh zombie should be alive", tt.kind)
		}
	}
}

func TestFromDiscriminator(t *testing.T) {
	z, err := FromDiscriminator("brute")
	if err != nil {
		t.Fatal(err)
	}
	if z.Kind != KindBrute {
		t.Errorf("kind = %s, want brute", z.Kind)
	}

	if _, err := FromDiscriminator("lich"); err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestSpawnPlayer_FindsWalkableCell(t *testing.T) {
	m := grid.NewMap(10, 10)
	// Make the requested cell itself impassable.
	m.SetTerrain(grid.Coord{X: 5, Y: 5}, grid.TerrainBuilding)

	s := NewSpawner(42)
	p, err := s.SpawnPlayer(m, "survivor", grid.Coord{X: 5, Y: 5})
	if err != nil {
		t.Fatal(err)
	}
	if p.Pos() == (grid.Coord{X: 5, Y: 5}) {
		t.Error("player placed on impassable terrain")
	}
	if !m.Get(p.Pos()).Walkable() {
		t.Errorf("player cell %s not walkable", p.Pos())
	}
	if at, ok := m.EntityAt(p.UUID); !ok || at != p.Pos() {
		t.Error("player missing from the occupant index")
	}
}

func TestSpawnHorde(t *testing.T) {
	m := grid.NewMap(30, 30)
	avoid := grid.Coord{X: 15, Y: 15}

	s := NewSpawner(42)
	horde, err := s.SpawnHorde(m, 10, avoid, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(horde) != 10 {
		t.Fatalf("spawned %d zombies, want 10", len(horde))
	}

	seen := make(map[grid.Coord]bool)
	for _, z := range horde {
		if seen[z.Pos()] {
			t.Errorf("two zombies share cell %s", z.Pos())
		}
		seen[z.Pos()] = true
		if grid.ManhattanDistance(z.Pos(), avoid) < 5 {
			t.Errorf("zombie at %s inside the exclusion radius around %s", z.Pos(), avoid)
		}
	}
}

func TestRefreshAP(t *testing.T) {
	z := NewZombie(KindRunner)
	z.AP = 0
	z.RefreshAP()
	if z.AP != z.MaxAP {
		t.Errorf("AP = %d, want %d", z.AP, z.MaxAP)
	}
}
