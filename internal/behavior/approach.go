package behavior

import (
	"sort"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/grid"
)

// ApproachTile is one of the four cells orthogonally adjacent to the
// player, annotated with walkability and occupancy at the time the list
// was built.
type ApproachTile struct {
	Coord    grid.Coord `json:"coord"`
	Walkable bool       `json:"walkable"`
	Occupied bool       `json:"occupied"`
}

// ApproachList ranks the player's orthogonal neighbors for chase
// targeting. Built once per player-turn boundary and consumed read-only
// by every agent's chase behavior in the following zombie phase.
type ApproachList []ApproachTile

// BuildApproachList annotates the four cells around the player in the
// fixed north/east/south/west order. Rebuild whenever the player moves or
// the map changes.
func BuildApproachList(m *grid.Map, player *actor.Player) ApproachList {
	if m == nil || player == nil {
		return nil
	}
	list := make(ApproachList, 0, 4)
	for _, at := range player.Pos().Orthogonals() {
		cell := m.Get(at)
		if cell == nil {
			continue
		}
		list = append(list, ApproachTile{
			Coord:    at,
			Walkable: cell.Terrain.Passable(),
			Occupied: cell.HasBlockingOccupant(),
		})
	}
	return list
}

// candidatesFor orders the approach tiles for one agent: unoccupied beats
// occupied, then nearer beats farther. Impassable tiles are dropped.
func (l ApproachList) candidatesFor(from grid.Coord) []ApproachTile {
	result := make([]ApproachTile, 0, len(l))
	for _, t := range l {
		if !t.Walkable {
			continue
		}
		result = append(result, t)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Occupied != result[j].Occupied {
			return !result[i].Occupied
		}
		return grid.ManhattanDistance(from, result[i].Coord) < grid.ManhattanDistance(from, result[j].Coord)
	})
	return result
}
