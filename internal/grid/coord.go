// Package grid provides the rectangular tile map, terrain, and the
// authoritative occupant index that keeps entity coordinates consistent.
package grid

import (
	"fmt"
	"math"
)

// Coord represents a position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String formats a coordinate as (x,y).
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// OrthoDirections defines the four orthogonal neighbor offsets,
// in the fixed north/east/south/west preference order used by
// the approach-list builder.
var OrthoDirections = [4]Coord{
	{X: 0, Y: -1}, // north
	{X: 1, Y: 0},  // east
	{X: 0, Y: 1},  // south
	{X: -1, Y: 0}, // west
}

// DiagDirections defines the four diagonal neighbor offsets.
var DiagDirections = [4]Coord{
	{X: 1, Y: -1},
	{X: 1, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: -1},
}

// Add returns the component-wise sum of two coordinates.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// Orthogonals returns the four orthogonally adjacent coordinates.
func (c Coord) Orthogonals() [4]Coord {
	var result [4]Coord
	for i, dir := range OrthoDirections {
		result[i] = c.Add(dir)
	}
	return result
}

// ManhattanDistance returns |dx| + |dy| between two coordinates.
func ManhattanDistance(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// EuclideanDistance returns the straight-line distance between two coordinates.
func EuclideanDistance(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// IsOrthAdjacent reports whether b is one of a's four orthogonal neighbors.
func IsOrthAdjacent(a, b Coord) bool {
	return ManhattanDistance(a, b) == 1
}

// Ring returns every coordinate at exactly the given Manhattan distance
// from center, walked clockwise from the northern extreme. Radius 0
// returns just the center.
func Ring(center Coord, radius int) []Coord {
	if radius <= 0 {
		return []Coord{center}
	}
	result := make([]Coord, 0, 4*radius)
	for dx := 0; dx <= radius; dx++ {
		dy := radius - dx
		result = append(result, Coord{X: center.X + dx, Y: center.Y - dy})
	}
	for dx := radius - 1; dx >= 0; dx-- {
		dy := radius - dx
		result = append(result, Coord{X: center.X + dx, Y: center.Y + dy})
	}
	for dx := -1; dx >= -radius; dx-- {
		dy := radius + dx
		result = append(result, Coord{X: center.X + dx, Y: center.Y + dy})
	}
	for dx := -radius + 1; dx < 0; dx++ {
		dy := radius + dx
		result = append(result, Coord{X: center.X + dx, Y: center.Y - dy})
	}
	return result
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
