package behavior

import (
	"errors"

	"github.com/google/uuid"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/grid"
	"github.com/talgya/deadgrid/internal/pathfind"
	"github.com/talgya/deadgrid/internal/vision"
)

// Engine resolves one agent's turn at a time. It is stateless between
// turns: every turn re-derives its branch from the agent's four flags and
// current line of sight, never from a persisted behavior state.
type Engine struct {
	// SightRange caps chase detection distance. Zero means the default.
	SightRange float64
}

// NewEngine creates a behavior engine with default sight range.
func NewEngine() *Engine {
	return &Engine{SightRange: vision.DefaultMaxRange}
}

// ExecuteTurn runs the fixed-priority resolver for one zombie:
// chase, investigate-last-known, investigate-noise (stub), wander (stub).
// The branch is re-evaluated at the top whenever a sub-behavior completes
// with action points remaining, so an agent that arrives at its last-known
// target and spots the player falls straight into chase within the same
// turn. Only the shared claim set is mutated besides the agent itself.
func (e *Engine) ExecuteTurn(z *actor.Zombie, m *grid.Map, player *actor.Player, approaches ApproachList, claims ClaimedTileSet) (*TurnReport, error) {
	if m == nil {
		return nil, errors.New("behavior: nil map")
	}
	if z == nil {
		return nil, errors.New("behavior: nil agent")
	}
	if player == nil {
		return nil, errors.New("behavior: nil player")
	}
	if claims == nil {
		return nil, errors.New("behavior: nil claim set")
	}

	z.RefreshAP()
	report := &TurnReport{AgentID: z.UUID, AgentLabel: z.Label()}

	done := false
	for !done && z.AP > 0 {
		switch {
		case e.canSeePlayer(m, z, player):
			done = e.runChase(z, m, player, approaches, report)
		case z.LastSeen:
			done = e.runInvestigate(z, m, claims, report)
		case z.HeardNoise:
			// Deliberate stub: clear the flag, no pathing.
			report.fire(BranchNoise)
			z.HeardNoise = false
			report.record(TurnAction{Kind: ActionIdle, From: z.Pos(), Reason: "noise source forgotten"})
			done = true
		default:
			// Deliberate stub: no idle wandering yet.
			report.fire(BranchWander)
			report.record(TurnAction{Kind: ActionIdle, From: z.Pos(), Reason: "nothing to do"})
			done = true
		}
	}

	report.APSpent = z.MaxAP - z.AP
	report.APLeft = z.AP
	z.BehaviorLabel = string(report.Branch)
	return report, nil
}

func (e *Engine) canSeePlayer(m *grid.Map, z *actor.Zombie, player *actor.Player) bool {
	res, err := vision.HasLineOfSight(m, z.Pos(), player.Pos(), vision.Options{
		MaxRange: e.SightRange,
	})
	return err == nil && res.Clear
}

// runChase spends the remaining action points closing on the player.
// Orthogonally adjacent means attack (1 AP) and the turn ends. Otherwise
// step toward the best approach candidate, falling back to pathing at the
// player's own cell; if every option is blocked, the turn ends with the
// remaining points unspent.
func (e *Engine) runChase(z *actor.Zombie, m *grid.Map, player *actor.Player, approaches ApproachList, report *TurnReport) bool {
	report.fire(BranchChase)

	for z.AP > 0 {
		if grid.IsOrthAdjacent(z.Pos(), player.Pos()) {
			z.AP--
			report.Attacked = true
			report.record(TurnAction{Kind: ActionAttack, From: z.Pos(), To: player.Pos()})
			return true
		}

		next, ok := e.chaseStep(m, z, player, approaches)
		if !ok {
			report.record(TurnAction{Kind: ActionBlocked, From: z.Pos(), Reason: "no route to player"})
			return true
		}
		if !e.step(z, m, next, report) {
			return true
		}
	}
	return true
}

// chaseStep picks the next cell toward the player: the nearest unoccupied
// approach tile with an open path wins, occupied tiles are tried after,
// and pathing straight at the player's cell is the last resort.
func (e *Engine) chaseStep(m *grid.Map, z *actor.Zombie, player *actor.Player, approaches ApproachList) (grid.Coord, bool) {
	for _, tile := range approaches.candidatesFor(z.Pos()) {
		path, err := pathfind.FindPath(m, z.Pos(), tile.Coord, pathfind.Options{
			Walkable: walkableIgnoring(z.UUID),
		})
		if err == nil && len(path) >= 2 {
			return path[1], true
		}
	}

	// Fall back to the player's own cell, ignoring the player as a blocker
	// so the path resolves; the step stops short of actually entering.
	path, err := pathfind.FindPath(m, z.Pos(), player.Pos(), pathfind.Options{
		Walkable: walkableIgnoring(z.UUID, player.UUID),
	})
	if err == nil && len(path) >= 2 && path[1] != player.Pos() {
		return path[1], true
	}

	return grid.Coord{}, false
}

// runInvestigate heads for the agent's last-known player position,
// negotiating the shared claim set first. Arrival clears the flag and
// hands control back to the resolver loop with the remaining points.
func (e *Engine) runInvestigate(z *actor.Zombie, m *grid.Map, claims ClaimedTileSet, report *TurnReport) bool {
	report.fire(BranchInvestigate)

	target := z.LastSeenCoords
	if claims.ClaimedByOther(target, z.UUID) {
		if alt, ok := alternativeTarget(m, target, claims); ok {
			target = alt
		}
		// No unclaimed alternative within radius 3: keep the original.
	}
	claims.Claim(target, z.UUID)
	// The claim and the agent's stated target must agree.
	z.LastSeenCoords = target

	for {
		if z.Pos() == target {
			z.LastSeen = false
			return false
		}
		if z.AP == 0 {
			return true
		}

		path, err := pathfind.FindPath(m, z.Pos(), target, pathfind.Options{
			Walkable: walkableIgnoring(z.UUID),
		})
		if err != nil || len(path) < 2 {
			report.record(TurnAction{Kind: ActionBlocked, From: z.Pos(), Reason: "no route to last-known position"})
			return true
		}
		if !e.step(z, m, path[1], report) {
			return true
		}
	}
}

// alternativeTarget searches expanding Manhattan rings (radius 1 to 3)
// around a contested target for the nearest unclaimed walkable cell.
func alternativeTarget(m *grid.Map, origin grid.Coord, claims ClaimedTileSet) (grid.Coord, bool) {
	for radius := 1; radius <= 3; radius++ {
		for _, at := range grid.Ring(origin, radius) {
			cell := m.Get(at)
			if cell == nil || !cell.Walkable() {
				continue
			}
			if _, claimed := claims[at]; claimed {
				continue
			}
			return at, true
		}
	}
	return grid.Coord{}, false
}

// step moves the agent one cell, spending exactly 1 AP, and verifies the
// occupant index afterward. Returns false if the move was refused.
func (e *Engine) step(z *actor.Zombie, m *grid.Map, to grid.Coord, report *TurnReport) bool {
	from := z.Pos()
	if err := m.MoveEntity(z, to); err != nil {
		report.record(TurnAction{Kind: ActionBlocked, From: from, Reason: err.Error()})
		return false
	}
	z.AP--
	report.record(TurnAction{Kind: ActionMove, From: from, To: to})
	m.CheckIntegrity(z)
	return true
}

// walkableIgnoring builds a walkability predicate that treats the listed
// entities as non-blocking, letting an agent path out of its own cell.
func walkableIgnoring(ids ...uuid.UUID) func(*grid.Cell) bool {
	return func(c *grid.Cell) bool {
		if !c.Terrain.Passable() {
			return false
		}
		for _, o := range c.Occupants {
			if !o.BlocksMovement() {
				continue
			}
			ignored := false
			for _, id := range ids {
				if o.ID() == id {
					ignored = true
					break
				}
			}
			if !ignored {
				return false
			}
		}
		return true
	}
}
