// Package vision answers line-of-sight and field-of-view queries against
// the grid. Rays are rasterized with integer Bresenham stepping, so two
// traces over the same blocking configuration always agree.
package vision

import (
	"errors"

	"github.com/google/uuid"

	"github.com/talgya/deadgrid/internal/grid"
)

// DefaultMaxRange is the sight radius used when a query does not set one.
const DefaultMaxRange = 10.0

// Options tunes a visibility query.
type Options struct {
	// MaxRange caps sight distance. Zero means DefaultMaxRange.
	MaxRange float64

	// IgnoreIDs lists occupants that never block this query's rays,
	// typically the viewer itself and its target.
	IgnoreIDs []uuid.UUID
}

func (o Options) maxRange() float64 {
	if o.MaxRange > 0 {
		return o.MaxRange
	}
	return DefaultMaxRange
}

func (o Options) ignoreSet() map[uuid.UUID]bool {
	if len(o.IgnoreIDs) == 0 {
		return nil
	}
	set := make(map[uuid.UUID]bool, len(o.IgnoreIDs))
	for _, id := range o.IgnoreIDs {
		set[id] = true
	}
	return set
}

// Result reports the outcome of a line-of-sight trace.
type Result struct {
	Clear     bool        `json:"clear"`
	Distance  float64     `json:"distance"`
	BlockedBy string      `json:"blocked_by,omitempty"`
	BlockedAt *grid.Coord `json:"blocked_at,omitempty"`
}

// ErrNoMap is returned when a query is made without a map.
var ErrNoMap = errors.New("vision: nil map")

// HasLineOfSight traces the discrete line between two cells. A ray past
// MaxRange is reported as range-blocked without tracing. Only intermediate
// cells are tested — the endpoints never block their own ray. The first
// out-of-bounds cell, sight-blocking terrain, or sight-blocking occupant
// outside the ignore list stops the ray.
func HasLineOfSight(m *grid.Map, from, to grid.Coord, opts Options) (Result, error) {
	if m == nil {
		return Result{}, ErrNoMap
	}

	dist := grid.EuclideanDistance(from, to)
	if dist > opts.maxRange() {
		return Result{Distance: dist, BlockedBy: "range"}, nil
	}

	// Trace in canonical endpoint order so A→B and B→A rasterize the same
	// cells and always agree.
	a, b := from, to
	if b.Y < a.Y || (b.Y == a.Y && b.X < a.X) {
		a, b = b, a
	}

	ignore := opts.ignoreSet()
	line := traceLine(a, b)
	// Skip both endpoints.
	for i := 1; i < len(line)-1; i++ {
		at := line[i]
		cell := m.Get(at)
		if cell == nil {
			blocked := at
			return Result{Distance: dist, BlockedBy: "edge", BlockedAt: &blocked}, nil
		}
		if stopped, by := cell.SightBlocked(ignore); stopped {
			blocked := at
			return Result{Distance: dist, BlockedBy: by, BlockedAt: &blocked}, nil
		}
	}

	return Result{Clear: true, Distance: dist}, nil
}

// VisibleTile is a cell visible from a query center.
type VisibleTile struct {
	Coord    grid.Coord `json:"coord"`
	Distance float64    `json:"distance"`
}

// VisibleTiles returns every in-range cell with a clear line of sight back
// to center, including center itself at distance 0.
func VisibleTiles(m *grid.Map, center grid.Coord, opts Options) ([]VisibleTile, error) {
	if m == nil {
		return nil, ErrNoMap
	}
	if !m.InBounds(center) {
		return nil, errors.New("vision: center out of bounds")
	}

	maxRange := opts.maxRange()
	radius := int(maxRange)
	var result []VisibleTile

	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			at := grid.Coord{X: x, Y: y}
			if !m.InBounds(at) {
				continue
			}
			if at == center {
				result = append(result, VisibleTile{Coord: at, Distance: 0})
				continue
			}
			res, err := HasLineOfSight(m, center, at, opts)
			if err != nil {
				return nil, err
			}
			if res.Clear {
				result = append(result, VisibleTile{Coord: at, Distance: res.Distance})
			}
		}
	}

	return result, nil
}

// FOVResult holds an agent's field of view: the visible tiles and every
// occupant found on them, excluding the viewer itself.
type FOVResult struct {
	Tiles     []VisibleTile   `json:"tiles"`
	Occupants []grid.Occupant `json:"-"`
}

// FieldOfView computes what a viewer can currently see. Consumed both by
// agent perception and by outside layers such as fog-of-war rendering.
func FieldOfView(m *grid.Map, viewer grid.Occupant, opts Options) (*FOVResult, error) {
	if m == nil {
		return nil, ErrNoMap
	}
	if viewer == nil {
		return nil, errors.New("vision: nil viewer")
	}

	opts.IgnoreIDs = append(opts.IgnoreIDs, viewer.ID())
	tiles, err := VisibleTiles(m, viewer.Pos(), opts)
	if err != nil {
		return nil, err
	}

	result := &FOVResult{Tiles: tiles}
	for _, t := range tiles {
		cell := m.Get(t.Coord)
		for _, o := range cell.Occupants {
			if o.ID() == viewer.ID() {
				continue
			}
			result.Occupants = append(result.Occupants, o)
		}
	}
	return result, nil
}

// traceLine rasterizes the discrete line between two coordinates,
// inclusive of both endpoints.
func traceLine(from, to grid.Coord) []grid.Coord {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx := sign(to.X - from.X)
	sy := sign(to.Y - from.Y)
	err := dx + dy

	line := []grid.Coord{from}
	current := from
	for current != to {
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			current.X += sx
		}
		if e2 <= dx {
			err += dx
			current.Y += sy
		}
		line = append(line, current)
	}
	return line
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
