// Package worldgen builds ruined-town maps using layered simplex noise.
// Elevation carves water basins, density places buildings and tree cover,
// and a post-pass opens transitions at the map edge and clears the spawn.
package worldgen

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/deadgrid/internal/grid"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Width  int
	Height int
	Seed   int64 // 0 = random

	WaterLevel   float64 // Elevation threshold for water basins
	BuildingLvl  float64 // Density threshold for building blocks
	TreeLvl      float64 // Density threshold for tree cover
	RubbleChance float64 // Per-open-cell chance of collapsed debris
}

// DefaultGenConfig returns a reasonable town layout.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:        48,
		Height:       32,
		WaterLevel:   0.22,
		BuildingLvl:  0.72,
		TreeLvl:      0.60,
		RubbleChance: 0.04,
	}
}

// SmallTestConfig returns a tiny map for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:        16,
		Height:       12,
		Seed:         42,
		WaterLevel:   0.20,
		BuildingLvl:  0.75,
		TreeLvl:      0.65,
		RubbleChance: 0.02,
	}
}

// Generate creates a complete map with terrain derived from noise layers.
// The same seed always produces the same map.
func Generate(cfg GenConfig) *grid.Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	densNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed + 2))

	m := grid.NewMap(cfg.Width, cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			at := grid.Coord{X: x, Y: y}
			fx, fy := float64(x), float64(y)

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.07, 0.5)
			dens := octaveNoise(densNoise, fx, fy, 3, 0.10, 0.5)

			cell := m.Get(at)
			cell.Elevation = elev
			cell.Density = dens
			cell.Terrain = deriveTerrain(elev, dens, rng, cfg)
		}
	}

	carveStreets(m, seed)
	openTransitions(m)

	return m
}

// deriveTerrain determines a cell's terrain from the noise layers.
func deriveTerrain(elev, dens float64, rng *rand.Rand, cfg GenConfig) grid.Terrain {
	if elev < cfg.WaterLevel {
		return grid.TerrainWater
	}
	if dens > cfg.BuildingLvl {
		return grid.TerrainBuilding
	}
	if dens > cfg.TreeLvl {
		return grid.TerrainTree
	}
	if rng.Float64() < cfg.RubbleChance {
		return grid.TerrainRubble
	}
	return grid.TerrainOpen
}

// carveStreets cuts a horizontal and a vertical street through the town so
// the map never generates fully partitioned.
func carveStreets(m *grid.Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	row := m.Height/3 + rng.Intn(m.Height/3)
	for x := 0; x < m.Width; x++ {
		m.SetTerrain(grid.Coord{X: x, Y: row}, grid.TerrainStreet)
	}

	col := m.Width/3 + rng.Intn(m.Width/3)
	for y := 0; y < m.Height; y++ {
		m.SetTerrain(grid.Coord{X: col, Y: y}, grid.TerrainStreet)
	}
}

// openTransitions converts street cells touching the map edge into
// transition tiles — the exits the outer game uses to leave the map.
func openTransitions(m *grid.Map) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if x != 0 && y != 0 && x != m.Width-1 && y != m.Height-1 {
				continue
			}
			at := grid.Coord{X: x, Y: y}
			if m.Get(at).Terrain == grid.TerrainStreet {
				m.SetTerrain(at, grid.TerrainTransition)
			}
		}
	}
}

// ClearSpawn forces a walkable clearing of the given radius around a
// coordinate, for player and horde placement.
func ClearSpawn(m *grid.Map, center grid.Coord, radius int) {
	for r := 0; r <= radius; r++ {
		for _, at := range grid.Ring(center, r) {
			cell := m.Get(at)
			if cell == nil {
				continue
			}
			if !cell.Terrain.Passable() {
				cell.Terrain = grid.TerrainOpen
			}
		}
	}
}

// octaveNoise layers multiple noise frequencies for natural-looking maps.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *grid.Map) map[grid.Terrain]int {
	counts := make(map[grid.Terrain]int)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			counts[m.Get(grid.Coord{X: x, Y: y}).Terrain]++
		}
	}
	return counts
}
