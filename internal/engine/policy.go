package engine

import (
	"math"
	"math/rand"

	"github.com/talgya/deadgrid/internal/grid"
	"github.com/talgya/deadgrid/internal/pathfind"
	"github.com/talgya/deadgrid/internal/vision"
)

// PlayerPolicy plans the player's movement path for a turn. The demo loop
// stands in for real input handling, which lives outside this core.
type PlayerPolicy interface {
	// PlanMove returns the resolved path including the starting cell, or
	// nil to stay put. The policy is responsible for spending player AP.
	PlanMove(s *Simulation) ([]grid.Coord, error)
}

// SurvivorPolicy is the demo player: flee any zombie in sight, otherwise
// roam toward a random waypoint.
type SurvivorPolicy struct {
	rng      *rand.Rand
	waypoint *grid.Coord
}

// NewSurvivorPolicy creates a deterministic demo policy from a seed.
func NewSurvivorPolicy(seed int64) *SurvivorPolicy {
	return &SurvivorPolicy{rng: rand.New(rand.NewSource(seed + 500))}
}

// PlanMove picks this turn's path and deducts its pre-planned movement
// cost, including the sustained-movement bonus, from the player's AP.
func (p *SurvivorPolicy) PlanMove(s *Simulation) ([]grid.Coord, error) {
	player := s.Player
	m := s.WorldMap

	fov, err := vision.FieldOfView(m, player, vision.Options{})
	if err != nil {
		return nil, err
	}

	var threats []grid.Coord
	for _, o := range fov.Occupants {
		if o.ID() != player.UUID && o.BlocksMovement() {
			threats = append(threats, o.Pos())
		}
	}

	var goal grid.Coord
	var haveGoal bool
	if len(threats) > 0 {
		goal, haveGoal = p.fleeTarget(s, threats)
		p.waypoint = nil // Re-roll the waypoint once the chase is over.
	} else {
		goal, haveGoal = p.roamTarget(s)
	}
	if !haveGoal || goal == player.Pos() {
		return nil, nil
	}

	path, err := pathfind.FindPath(m, player.Pos(), goal, pathfind.Options{})
	if err != nil {
		return nil, err
	}
	if len(path) < 2 {
		return nil, nil
	}

	path = affordablePrefix(path, float64(player.AP))
	if len(path) < 2 {
		return nil, nil
	}

	cost := pathfind.CalculateMovementCost(path)
	player.AP -= int(math.Ceil(cost))
	if player.AP < 0 {
		player.AP = 0
	}
	return path, nil
}

// fleeTarget scans the tiles reachable this turn for the one that
// maximizes distance to the nearest threat.
func (p *SurvivorPolicy) fleeTarget(s *Simulation, threats []grid.Coord) (grid.Coord, bool) {
	tiles, err := pathfind.ReachableTiles(s.WorldMap, s.Player.Pos(), float64(s.Player.AP), pathfind.Options{})
	if err != nil || len(tiles) == 0 {
		return grid.Coord{}, false
	}

	best := s.Player.Pos()
	bestScore := nearestThreat(best, threats)
	for _, t := range tiles {
		if score := nearestThreat(t.Coord, threats); score > bestScore {
			best, bestScore = t.Coord, score
		}
	}
	return best, best != s.Player.Pos()
}

// roamTarget keeps the current waypoint, rolling a new random walkable
// cell whenever the old one is reached or missing.
func (p *SurvivorPolicy) roamTarget(s *Simulation) (grid.Coord, bool) {
	if p.waypoint != nil && *p.waypoint != s.Player.Pos() {
		return *p.waypoint, true
	}

	m := s.WorldMap
	for attempt := 0; attempt < 100; attempt++ {
		at := grid.Coord{X: p.rng.Intn(m.Width), Y: p.rng.Intn(m.Height)}
		cell := m.Get(at)
		if cell == nil || !cell.Walkable() {
			continue
		}
		p.waypoint = &at
		return at, true
	}
	return grid.Coord{}, false
}

func nearestThreat(at grid.Coord, threats []grid.Coord) float64 {
	nearest := math.MaxFloat64
	for _, t := range threats {
		if d := grid.EuclideanDistance(at, t); d < nearest {
			nearest = d
		}
	}
	return nearest
}

// affordablePrefix trims a pre-planned path down to the longest prefix the
// budget can pay for under the multi-cell movement costing.
func affordablePrefix(path []grid.Coord, budget float64) []grid.Coord {
	for end := len(path); end >= 2; end-- {
		if pathfind.CalculateMovementCost(path[:end]) <= budget {
			return path[:end]
		}
	}
	return path[:1]
}
