package grid

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Map holds the complete rectangular grid and the authoritative occupant
// index. Every entity's own coordinates must agree with its index entry;
// CheckIntegrity reconciles and logs when they drift.
type Map struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	cells []Cell

	// Authoritative placement: entity ID → coordinate.
	index map[uuid.UUID]Coord
}

// NewMap creates a map of the given dimensions with all cells open.
func NewMap(width, height int) *Map {
	m := &Map{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
		index:  make(map[uuid.UUID]Coord),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.cells[y*width+x] = Cell{Coord: Coord{X: x, Y: y}, Terrain: TerrainOpen}
		}
	}
	return m
}

// InBounds reports whether the coordinate lies on the map.
func (m *Map) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// Get returns the cell at the given coordinate, or nil if out of bounds.
func (m *Map) Get(c Coord) *Cell {
	if !m.InBounds(c) {
		return nil
	}
	return &m.cells[c.Y*m.Width+c.X]
}

// SetTerrain assigns terrain at a coordinate. Out-of-bounds is ignored.
func (m *Map) SetTerrain(c Coord, t Terrain) {
	if cell := m.Get(c); cell != nil {
		cell.Terrain = t
	}
}

// CellCount returns the total number of cells.
func (m *Map) CellCount() int {
	return m.Width * m.Height
}

// PlaceEntity adds an entity to the map at the given coordinate,
// registering it in the occupant index and the cell's occupant list.
func (m *Map) PlaceEntity(o Occupant, at Coord) error {
	cell := m.Get(at)
	if cell == nil {
		return fmt.Errorf("place %s: %s out of bounds", o.Label(), at)
	}
	if _, exists := m.index[o.ID()]; exists {
		return fmt.Errorf("place %s: already on map", o.Label())
	}
	cell.Occupants = append(cell.Occupants, o)
	m.index[o.ID()] = at
	o.SetPos(at)
	return nil
}

// RemoveEntity deletes an entity from the map and the occupant index.
func (m *Map) RemoveEntity(o Occupant) {
	at, ok := m.index[o.ID()]
	if !ok {
		return
	}
	m.detach(o.ID(), at)
	delete(m.index, o.ID())
}

// MoveEntity relocates an entity to a new coordinate, keeping the occupant
// index and both cells' occupant lists consistent with the entity's own
// position.
func (m *Map) MoveEntity(o Occupant, to Coord) error {
	dest := m.Get(to)
	if dest == nil {
		return fmt.Errorf("move %s: %s out of bounds", o.Label(), to)
	}
	from, ok := m.index[o.ID()]
	if !ok {
		return fmt.Errorf("move %s: not on map", o.Label())
	}
	m.detach(o.ID(), from)
	dest.Occupants = append(dest.Occupants, o)
	m.index[o.ID()] = to
	o.SetPos(to)
	return nil
}

// detach removes the entity from a cell's occupant list.
func (m *Map) detach(id uuid.UUID, at Coord) {
	cell := m.Get(at)
	if cell == nil {
		return
	}
	for i, occ := range cell.Occupants {
		if occ.ID() == id {
			cell.Occupants = append(cell.Occupants[:i], cell.Occupants[i+1:]...)
			return
		}
	}
}

// EntityAt returns the index position of an entity, if placed.
func (m *Map) EntityAt(id uuid.UUID) (Coord, bool) {
	at, ok := m.index[id]
	return at, ok
}

// CheckIntegrity verifies that an entity's coordinates agree with the
// occupant index. On mismatch it reconciles from the index, which is
// authoritative, and logs the inconsistency rather than failing.
func (m *Map) CheckIntegrity(o Occupant) bool {
	at, ok := m.index[o.ID()]
	if !ok {
		return false
	}
	if at == o.Pos() {
		return true
	}
	slog.Warn("entity position drifted from occupant index, reconciling",
		"entity", o.Label(),
		"entity_pos", o.Pos(),
		"index_pos", at,
	)
	o.SetPos(at)
	return false
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, entities=%d)", m.Width, m.Height, len(m.index))
}
