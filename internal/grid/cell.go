package grid

import "github.com/google/uuid"

// Terrain types for grid cells.
type Terrain uint8

const (
	TerrainOpen       Terrain = iota // Bare ground — walkable, clear sight
	TerrainStreet                    // Paved road — walkable, clear sight
	TerrainRubble                    // Collapsed debris — walkable, clear sight
	TerrainTransition               // Map-edge exit tile — walkable
	TerrainWall                      // Impassable, blocks sight
	TerrainBuilding                  // Impassable, blocks sight
	TerrainTree                      // Impassable, blocks sight
	TerrainWater                     // Impassable, does not block sight
)

// Passable reports whether the terrain itself permits movement.
// Occupants may still block a passable cell.
func (t Terrain) Passable() bool {
	switch t {
	case TerrainWall, TerrainBuilding, TerrainTree, TerrainWater:
		return false
	default:
		return true
	}
}

// BlocksSight reports whether the terrain stops a line of sight.
func (t Terrain) BlocksSight() bool {
	switch t {
	case TerrainWall, TerrainBuilding, TerrainTree:
		return true
	default:
		return false
	}
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainOpen:
		return "Open"
	case TerrainStreet:
		return "Street"
	case TerrainRubble:
		return "Rubble"
	case TerrainTransition:
		return "Transition"
	case TerrainWall:
		return "Wall"
	case TerrainBuilding:
		return "Building"
	case TerrainTree:
		return "Tree"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}

// Occupant is anything that can stand on a cell: the player, zombies,
// or static props. The map's occupant index is keyed by ID.
type Occupant interface {
	ID() uuid.UUID
	Pos() Coord
	SetPos(Coord)
	BlocksMovement() bool
	BlocksSight() bool
	Label() string
}

// Cell represents a single tile on the map.
type Cell struct {
	Coord   Coord   `json:"coord"`
	Terrain Terrain `json:"terrain"`

	// Environmental data set during world generation.
	Elevation float64 `json:"elevation"`
	Density   float64 `json:"density"`

	// Occupants currently standing on this cell. The map owns this list;
	// mutate only through Map.PlaceEntity/RemoveEntity/MoveEntity.
	Occupants []Occupant `json:"-"`
}

// Walkable reports whether an entity may enter this cell: impassable
// terrain never is; otherwise only a movement-blocking occupant denies it.
func (c *Cell) Walkable() bool {
	if !c.Terrain.Passable() {
		return false
	}
	for _, o := range c.Occupants {
		if o.BlocksMovement() {
			return false
		}
	}
	return true
}

// SightBlocked reports whether this cell stops a line of sight, either by
// terrain or by an occupant not present in the ignore set.
func (c *Cell) SightBlocked(ignore map[uuid.UUID]bool) (bool, string) {
	if c.Terrain.BlocksSight() {
		return true, TerrainName(c.Terrain)
	}
	for _, o := range c.Occupants {
		if o.BlocksSight() && !ignore[o.ID()] {
			return true, o.Label()
		}
	}
	return false, ""
}

// HasBlockingOccupant reports whether any occupant blocks movement.
func (c *Cell) HasBlockingOccupant() bool {
	for _, o := range c.Occupants {
		if o.BlocksMovement() {
			return true
		}
	}
	return false
}
