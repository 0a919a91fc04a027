package pathfind

import (
	"math"
	"testing"

	"github.com/talgya/deadgrid/internal/grid"
)

// buildMap creates an open map with walls at the listed coordinates.
func buildMap(w, h int, walls ...grid.Coord) *grid.Map {
	m := grid.NewMap(w, h)
	for _, at := range walls {
		m.SetTerrain(at, grid.TerrainWall)
	}
	return m
}

func TestFindPath_EndpointsAndOrder(t *testing.T) {
	m := buildMap(10, 10)
	start := grid.Coord{X: 1, Y: 1}
	goal := grid.Coord{X: 7, Y: 5}

	path, err := FindPath(m, start, goal, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(path) == 0 {
		t.Fatal("expected a path on an open map")
	}
	if path[0] != start {
		t.Errorf("path starts at %s, want %s", path[0], start)
	}
	if path[len(path)-1] != goal {
		t.Errorf("path ends at %s, want %s", path[len(path)-1], goal)
	}

	// Every step must be a single orthogonal move when diagonals are off.
	for i := 1; i < len(path); i++ {
		if grid.ManhattanDistance(path[i-1], path[i]) != 1 {
			t.Errorf("step %d: %s -> %s is not a single orthogonal move", i, path[i-1], path[i])
		}
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	m := buildMap(5, 5)
	at := grid.Coord{X: 2, Y: 2}

	path, err := FindPath(m, at, at, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 1 || path[0] != at {
		t.Errorf("got %v, want single-cell path", path)
	}
}

func TestFindPath_UnwalkableGoal(t *testing.T) {
	m := buildMap(5, 5, grid.Coord{X: 3, Y: 3})

	path, err := FindPath(m, grid.Coord{X: 0, Y: 0}, grid.Coord{X: 3, Y: 3}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 0 {
		t.Errorf("blocked goal should yield an empty path, got %v", path)
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	// Wall off a pocket around the goal.
	m := buildMap(8, 8,
		grid.Coord{X: 5, Y: 4}, grid.Coord{X: 5, Y: 5}, grid.Coord{X: 5, Y: 6},
		grid.Coord{X: 6, Y: 4}, grid.Coord{X: 7, Y: 4},
		grid.Coord{X: 6, Y: 6}, grid.Coord{X: 7, Y: 6},
	)

	path, err := FindPath(m, grid.Coord{X: 0, Y: 0}, grid.Coord{X: 6, Y: 5}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 0 {
		t.Errorf("unreachable goal should yield an empty path, got %v", path)
	}
}

func TestFindPath_Preconditions(t *testing.T) {
	if _, err := FindPath(nil, grid.Coord{}, grid.Coord{}, Options{}); err == nil {
		t.Error("nil map should be a usage error")
	}
	m := buildMap(4, 4)
	if _, err := FindPath(m, grid.Coord{X: -1, Y: 0}, grid.Coord{X: 2, Y: 2}, Options{}); err == nil {
		t.Error("out-of-bounds start should be a usage error")
	}
}

func TestFindPath_NoCornerCutting(t *testing.T) {
	// Two walls pinch the diagonal between (1,1) and (2,2).
	m := buildMap(5, 5, grid.Coord{X: 2, Y: 1}, grid.Coord{X: 1, Y: 2})

	path, err := FindPath(m, grid.Coord{X: 1, Y: 1}, grid.Coord{X: 2, Y: 2}, Options{AllowDiagonal: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if a.X != b.X && a.Y != b.Y {
			sideA := m.Get(grid.Coord{X: b.X, Y: a.Y})
			sideB := m.Get(grid.Coord{X: a.X, Y: b.Y})
			if !sideA.Walkable() || !sideB.Walkable() {
				t.Errorf("step %s -> %s cuts a blocked corner", a, b)
			}
		}
	}
}

func TestFindPath_DiagonalCheaperWhenOpen(t *testing.T) {
	m := buildMap(6, 6)
	start := grid.Coord{X: 0, Y: 0}
	goal := grid.Coord{X: 4, Y: 4}

	ortho, err := FindPath(m, start, goal, Options{})
	if err != nil {
		t.Fatal(err)
	}
	diag, err := FindPath(m, start, goal, Options{AllowDiagonal: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(diag) >= len(ortho) {
		t.Errorf("diagonal path (%d cells) should be shorter than orthogonal (%d)", len(diag), len(ortho))
	}
}

func TestFindPath_CustomWalkablePredicate(t *testing.T) {
	m := buildMap(5, 5)
	blocked := grid.Coord{X: 2, Y: 0}
	m.SetTerrain(blocked, grid.TerrainWall)

	// A predicate that treats the wall as open finds the straight route.
	path, err := FindPath(m, grid.Coord{X: 0, Y: 0}, grid.Coord{X: 4, Y: 0}, Options{
		Walkable: func(c *grid.Cell) bool { return true },
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 5 {
		t.Errorf("permissive predicate should give a 5-cell straight path, got %d", len(path))
	}
}

func TestFindPath_MaxDistance(t *testing.T) {
	m := buildMap(12, 3)

	path, err := FindPath(m, grid.Coord{X: 0, Y: 1}, grid.Coord{X: 10, Y: 1}, Options{MaxDistance: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 0 {
		t.Errorf("goal beyond the search cap should be unreachable, got %v", path)
	}
}

func TestCalculateMovementCost(t *testing.T) {
	line := func(n int) []grid.Coord {
		path := make([]grid.Coord, n)
		for i := range path {
			path[i] = grid.Coord{X: i, Y: 0}
		}
		return path
	}

	cases := []struct {
		name string
		path []grid.Coord
		want float64
	}{
		{"empty", nil, 0},
		{"single cell", line(1), 0},
		{"four steps, no bonus", line(5), 4.0},
		{"five steps, one bonus", line(6), 4.5},
		{"ten steps, two bonuses", line(11), 9.0},
	}
	for _, tc := range cases {
		if got := CalculateMovementCost(tc.path); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: cost = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCalculateMovementCost_NeverFree(t *testing.T) {
	// A pathological bonus should still floor at 0.1, never zero or less.
	path := []grid.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}}
	if got := CalculateMovementCost(path); got < 0.1 {
		t.Errorf("non-trivial path cost = %v, want >= 0.1", got)
	}
}

func TestReachableTiles(t *testing.T) {
	m := buildMap(7, 7, grid.Coord{X: 1, Y: 0}, grid.Coord{X: 1, Y: 1}, grid.Coord{X: 1, Y: 2})
	start := grid.Coord{X: 0, Y: 1}

	tiles, err := ReachableTiles(m, start, 2.0, Options{})
	if err != nil {
		t.Fatal(err)
	}

	costs := make(map[grid.Coord]float64, len(tiles))
	for _, rt := range tiles {
		costs[rt.Coord] = rt.Cost
	}

	if got, ok := costs[start]; !ok || got != 0 {
		t.Errorf("start cost = %v (%v), want 0", got, ok)
	}
	if got, ok := costs[grid.Coord{X: 0, Y: 0}]; !ok || got != 1 {
		t.Errorf("adjacent cost = %v (%v), want 1", got, ok)
	}
	// The wall column forces a detour no 2-point budget can pay for.
	if _, ok := costs[grid.Coord{X: 2, Y: 1}]; ok {
		t.Error("cell behind the wall should not be reachable within budget")
	}
	for at, cost := range costs {
		if cost > 2.0 {
			t.Errorf("tile %s exceeds budget: %v", at, cost)
		}
	}
}
