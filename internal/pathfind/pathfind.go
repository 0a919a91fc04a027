// Package pathfind computes walkable routes and movement costs on the grid.
// A* with a Manhattan heuristic; orthogonal steps cost 1.0, diagonal 1.4.
package pathfind

import (
	"container/heap"
	"errors"

	"github.com/talgya/deadgrid/internal/grid"
)

const (
	orthoCost = 1.0
	diagCost  = 1.4
)

// Options tunes a pathfinding query.
type Options struct {
	// AllowDiagonal permits diagonal steps. Diagonal movement never cuts
	// corners: a diagonal step is rejected when either flanking orthogonal
	// cell is unwalkable.
	AllowDiagonal bool

	// Walkable overrides the default walkability test. Used to let an
	// agent ignore itself as a blocker when pathing away from its own cell.
	Walkable func(*grid.Cell) bool

	// MaxDistance caps the accumulated path cost of the search.
	// Zero means unlimited.
	MaxDistance float64
}

func (o Options) walkable(c *grid.Cell) bool {
	if o.Walkable != nil {
		return o.Walkable(c)
	}
	return c.Walkable()
}

// ErrNoMap is returned when a query is made without a map.
var ErrNoMap = errors.New("pathfind: nil map")

// FindPath returns an ordered route from start to goal inclusive, or nil if
// the goal is unreachable or unwalkable. A nil map or out-of-bounds endpoint
// is a usage error. Unreachability is a normal empty result — no partial
// paths toward blocked destinations.
func FindPath(m *grid.Map, start, goal grid.Coord, opts Options) ([]grid.Coord, error) {
	if m == nil {
		return nil, ErrNoMap
	}
	if !m.InBounds(start) || !m.InBounds(goal) {
		return nil, errors.New("pathfind: endpoint out of bounds")
	}
	if start == goal {
		return []grid.Coord{start}, nil
	}
	if !opts.walkable(m.Get(goal)) {
		return nil, nil
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{coord: start, g: 0, f: heuristic(start, goal)})

	cameFrom := make(map[grid.Coord]grid.Coord)
	gScore := map[grid.Coord]float64{start: 0}
	closed := make(map[grid.Coord]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.coord == goal {
			return reconstruct(cameFrom, goal), nil
		}
		if closed[current.coord] {
			continue
		}
		closed[current.coord] = true

		for _, step := range neighbors(m, current.coord, opts) {
			if closed[step.coord] {
				continue
			}
			g := current.g + step.cost
			if opts.MaxDistance > 0 && g > opts.MaxDistance {
				continue
			}
			if best, seen := gScore[step.coord]; seen && g >= best {
				continue
			}
			gScore[step.coord] = g
			cameFrom[step.coord] = current.coord
			heap.Push(open, &node{coord: step.coord, g: g, f: g + heuristic(step.coord, goal)})
		}
	}

	return nil, nil
}

// CalculateMovementCost sums the per-step costs of a pre-planned path,
// applying a sustained-movement efficiency bonus of 0.5 per full 5 cells
// traveled. Any non-trivial path costs at least 0.1 — movement is never free.
func CalculateMovementCost(path []grid.Coord) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += stepCost(path[i-1], path[i])
	}
	steps := len(path) - 1
	total -= 0.5 * float64(steps/5)
	if total < 0.1 {
		total = 0.1
	}
	return total
}

// ReachableTile is a cell reachable within a movement budget.
type ReachableTile struct {
	Coord grid.Coord `json:"coord"`
	Cost  float64    `json:"cost"`
}

// ReachableTiles returns every cell reachable from start within maxCost,
// annotated with the cheapest cost to get there. Uniform-cost flood fill;
// the start cell is included at cost 0.
func ReachableTiles(m *grid.Map, start grid.Coord, maxCost float64, opts Options) ([]ReachableTile, error) {
	if m == nil {
		return nil, ErrNoMap
	}
	if !m.InBounds(start) {
		return nil, errors.New("pathfind: start out of bounds")
	}

	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{coord: start, g: 0, f: 0})

	best := map[grid.Coord]float64{start: 0}
	var result []ReachableTile

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.g > best[current.coord] {
			continue
		}
		result = append(result, ReachableTile{Coord: current.coord, Cost: current.g})

		for _, step := range neighbors(m, current.coord, opts) {
			g := current.g + step.cost
			if g > maxCost {
				continue
			}
			if prev, seen := best[step.coord]; seen && g >= prev {
				continue
			}
			best[step.coord] = g
			heap.Push(open, &node{coord: step.coord, g: g, f: g})
		}
	}

	return result, nil
}

type candidate struct {
	coord grid.Coord
	cost  float64
}

// neighbors yields the walkable steps out of a coordinate, honoring the
// no-corner-cutting rule for diagonals.
func neighbors(m *grid.Map, from grid.Coord, opts Options) []candidate {
	result := make([]candidate, 0, 8)

	for _, dir := range grid.OrthoDirections {
		next := from.Add(dir)
		cell := m.Get(next)
		if cell == nil || !opts.walkable(cell) {
			continue
		}
		result = append(result, candidate{coord: next, cost: orthoCost})
	}

	if !opts.AllowDiagonal {
		return result
	}

	for _, dir := range grid.DiagDirections {
		next := from.Add(dir)
		cell := m.Get(next)
		if cell == nil || !opts.walkable(cell) {
			continue
		}
		// Both flanking orthogonal cells must be open to pass the corner.
		sideA := m.Get(grid.Coord{X: from.X + dir.X, Y: from.Y})
		sideB := m.Get(grid.Coord{X: from.X, Y: from.Y + dir.Y})
		if sideA == nil || !opts.walkable(sideA) {
			continue
		}
		if sideB == nil || !opts.walkable(sideB) {
			continue
		}
		result = append(result, candidate{coord: next, cost: diagCost})
	}

	return result
}

func stepCost(from, to grid.Coord) float64 {
	if from.X != to.X && from.Y != to.Y {
		return diagCost
	}
	return orthoCost
}

func heuristic(a, b grid.Coord) float64 {
	return float64(grid.ManhattanDistance(a, b))
}

func reconstruct(cameFrom map[grid.Coord]grid.Coord, goal grid.Coord) []grid.Coord {
	path := []grid.Coord{goal}
	current := goal
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	// Reverse into start → goal order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// node is an entry in the open set, ordered by f-score.
type node struct {
	coord grid.Coord
	g     float64
	f     float64
}

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
