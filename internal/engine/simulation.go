// Simulation ties the perception core together and drives it turn by turn:
// player phase, perception replay, then the strictly sequential zombie phase.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/behavior"
	"github.com/talgya/deadgrid/internal/grid"
	"github.com/talgya/deadgrid/internal/perception"
)

// AttackDamage is the health cost of one landed zombie strike. Full combat
// resolution lives outside this core; the orchestrator applies a flat hit.
const AttackDamage = 2

// Simulation holds the complete game state and wires the systems together.
// Everything runs single-threaded and turn-synchronous: no agent's turn
// begins before the previous one has fully resolved.
type Simulation struct {
	WorldMap *grid.Map
	Player   *actor.Player
	Zombies  []*actor.Zombie

	Tracker  *perception.Tracker
	Behavior *behavior.Engine

	Events []Event // Recent events (trimmed periodically)
	Turn   uint64  // Most recent turn processed
	Stats  SimStats

	// PlayerPolicy resolves the player's movement path for the demo loop.
	// A nil policy keeps the player still.
	PlayerPolicy PlayerPolicy
}

// Event is a notable occurrence in the world.
type Event struct {
	Turn        uint64 `json:"turn" db:"turn"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "attack", "behavior", "player", "death"
}

// SimStats tracks aggregate state per turn.
type SimStats struct {
	ZombiesAlive   int `json:"zombies_alive"`
	ZombiesHunting int `json:"zombies_hunting"` // LastSeen set or player in sight
	PlayerHP       int `json:"player_hp"`
	AttacksLanded  int `json:"attacks_landed"`
	TotalMoves     int `json:"total_moves"`
	TotalBlocked   int `json:"total_blocked"`
}

// NewSimulation assembles a simulation from generated components.
func NewSimulation(m *grid.Map, player *actor.Player, zombies []*actor.Zombie) *Simulation {
	sim := &Simulation{
		WorldMap: m,
		Player:   player,
		Zombies:  zombies,
		Tracker:  perception.NewTracker(),
		Behavior: behavior.NewEngine(),
	}
	sim.updateStats()
	return sim
}

// Over reports whether the simulation has reached a terminal state.
func (s *Simulation) Over() bool {
	return s.Player.HP <= 0
}

// RunTurn advances the world by one full turn: the player acts, every
// intermediate cell of the move is replayed through the tracker, and then
// each zombie takes its turn against a fresh claim set and a rebuilt
// approach list.
func (s *Simulation) RunTurn() error {
	if s.WorldMap == nil || s.Player == nil {
		return errors.New("engine: simulation not initialized")
	}
	s.Turn++

	if err := s.playerPhase(); err != nil {
		return fmt.Errorf("player phase: %w", err)
	}
	if err := s.zombiePhase(); err != nil {
		return fmt.Errorf("zombie phase: %w", err)
	}

	s.updateStats()
	s.trimEvents()

	slog.Info("turn complete",
		"turn", s.Turn,
		"player", s.Player.Pos(),
		"player_hp", s.Player.HP,
		"zombies", s.Stats.ZombiesAlive,
		"hunting", s.Stats.ZombiesHunting,
		"attacks", s.Stats.AttacksLanded,
	)
	return nil
}

// playerPhase resolves the player's move and feeds every intermediate cell
// to the perception tracker, so sight transitions land on the exact cell
// where they happened rather than the move's endpoint.
func (s *Simulation) playerPhase() error {
	s.Player.AP = s.Player.MaxAP

	var path []grid.Coord
	if s.PlayerPolicy != nil {
		var err error
		path, err = s.PlayerPolicy.PlanMove(s)
		if err != nil {
			return err
		}
	}

	if len(path) > 1 {
		for _, at := range path[1:] {
			if err := s.WorldMap.MoveEntity(s.Player, at); err != nil {
				return err
			}
			s.WorldMap.CheckIntegrity(s.Player)
		}
		s.addEvent("player", fmt.Sprintf("%s moves to %s", s.Player.Name, s.Player.Pos()))
	}

	intermediate := path
	if len(path) > 1 {
		intermediate = path[1:]
	}
	return s.Tracker.UpdateTracking(s.WorldMap, s.Player, intermediate, s.Zombies)
}

// zombiePhase runs every living zombie's turn in fixed iteration order.
// The claim set is created empty here and discarded at phase end — it is
// the sole coordination mechanism between agents and needs no locking
// because access is strictly sequential.
func (s *Simulation) zombiePhase() error {
	claims := behavior.NewClaimedTileSet()
	approaches := behavior.BuildApproachList(s.WorldMap, s.Player)

	for _, z := range s.Zombies {
		if !z.Alive() {
			continue
		}

		report, err := s.Behavior.ExecuteTurn(z, s.WorldMap, s.Player, approaches, claims)
		if err != nil {
			return fmt.Errorf("agent %s: %w", z.Label(), err)
		}
		s.applyReport(z, report)

		if s.Over() {
			s.addEvent("death", fmt.Sprintf("%s has fallen", s.Player.Name))
			break
		}
	}
	return nil
}

// applyReport surfaces a turn report: damage, stats, and notable events.
// The behavior engine itself never touches the player.
func (s *Simulation) applyReport(z *actor.Zombie, report *behavior.TurnReport) {
	if report.Attacked {
		s.Player.HP -= AttackDamage
		s.Stats.AttacksLanded++
		s.addEvent("attack", fmt.Sprintf("%s strikes %s", z.Label(), s.Player.Name))
	}
	s.Stats.TotalMoves += report.Moves()

	for _, a := range report.Actions {
		if a.Kind == behavior.ActionBlocked {
			s.Stats.TotalBlocked++
			s.addEvent("behavior", fmt.Sprintf("%s is %s", z.Label(), a))
		}
	}

	slog.Debug("agent turn",
		"agent", report.AgentLabel,
		"branch", report.Branch,
		"moves", report.Moves(),
		"ap_spent", report.APSpent,
		"ap_left", report.APLeft,
	)
}

func (s *Simulation) addEvent(category, description string) {
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Description: description,
		Category:    category,
	})
}

// trimEvents keeps the in-memory event log bounded.
func (s *Simulation) trimEvents() {
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

func (s *Simulation) updateStats() {
	alive := 0
	hunting := 0
	for _, z := range s.Zombies {
		if !z.Alive() {
			continue
		}
		alive++
		if z.LastSeen || s.Tracker.Spotted(z.UUID) {
			hunting++
		}
	}
	s.Stats.ZombiesAlive = alive
	s.Stats.ZombiesHunting = hunting
	s.Stats.PlayerHP = s.Player.HP
}
