// Entity spawning — places the player and the initial horde on walkable
// cells, keeping the map's occupant index consistent from the start.
package actor

import (
	"fmt"
	"math/rand"

	"github.com/talgya/deadgrid/internal/grid"
)

// Spawner creates and places entities for the simulation.
type Spawner struct {
	rng *rand.Rand
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{rng: rand.New(rand.NewSource(seed + 300))}
}

// SpawnPlayer places the player on the nearest walkable cell to the
// requested coordinate.
func (s *Spawner) SpawnPlayer(m *grid.Map, name string, near grid.Coord) (*Player, error) {
	at, ok := s.findWalkable(m, near)
	if !ok {
		return nil, fmt.Errorf("spawn player: no walkable cell near %s", near)
	}
	p := NewPlayer(name)
	if err := m.PlaceEntity(p, at); err != nil {
		return nil, err
	}
	return p, nil
}

// SpawnHorde creates count zombies with a kind mix weighted toward
// shamblers and scatters them on walkable cells away from the player.
func (s *Spawner) SpawnHorde(m *grid.Map, count int, avoid grid.Coord, minDistance int) ([]*Zombie, error) {
	horde := make([]*Zombie, 0, count)

	for i := 0; i < count; i++ {
		kind := s.rollKind()
		z := NewZombie(kind)

		at, ok := s.findSpawnCell(m, avoid, minDistance)
		if !ok {
			return horde, fmt.Errorf("spawn horde: placed %d of %d, map too crowded", i, count)
		}
		if err := m.PlaceEntity(z, at); err != nil {
			return horde, err
		}
		horde = append(horde, z)
	}

	return horde, nil
}

func (s *Spawner) rollKind() Kind {
	roll := s.rng.Float64()
	switch {
	case roll < 0.70:
		return KindShambler
	case roll < 0.90:
		return KindRunner
	default:
		return KindBrute
	}
}

// findSpawnCell picks a random walkable cell at least minDistance from the
// avoid point, falling back to any walkable cell after enough misses.
func (s *Spawner) findSpawnCell(m *grid.Map, avoid grid.Coord, minDistance int) (grid.Coord, bool) {
	for attempt := 0; attempt < 200; attempt++ {
		at := grid.Coord{X: s.rng.Intn(m.Width), Y: s.rng.Intn(m.Height)}
		cell := m.Get(at)
		if cell == nil || !cell.Walkable() {
			continue
		}
		if attempt < 150 && grid.ManhattanDistance(at, avoid) < minDistance {
			continue
		}
		return at, true
	}
	return grid.Coord{}, false
}

// findWalkable searches expanding rings around a coordinate for the first
// walkable cell.
func (s *Spawner) findWalkable(m *grid.Map, near grid.Coord) (grid.Coord, bool) {
	if cell := m.Get(near); cell != nil && cell.Walkable() {
		return near, true
	}
	for radius := 1; radius <= m.Width+m.Height; radius++ {
		for _, at := range grid.Ring(near, radius) {
			cell := m.Get(at)
			if cell != nil && cell.Walkable() {
				return at, true
			}
		}
	}
	return grid.Coord{}, false
}
