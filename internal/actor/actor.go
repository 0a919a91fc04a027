// Package actor provides the player and zombie entity models and the
// static variant registry used to rebuild zombies from persisted state.
package actor

import (
	"github.com/google/uuid"

	"github.com/talgya/deadgrid/internal/grid"
)

// DefaultMaxAP is the per-turn action point budget for a standard zombie.
const DefaultMaxAP = 8

// Player is the human-controlled survivor. Read-only to the agent core
// during the zombie phase.
type Player struct {
	UUID uuid.UUID  `json:"id"`
	Name string     `json:"name"`
	Loc  grid.Coord `json:"pos"`

	MaxAP int `json:"max_ap"`
	AP    int `json:"ap"`
	HP    int `json:"hp"`
}

// NewPlayer creates a player with full action points and health.
func NewPlayer(name string) *Player {
	return &Player{
		UUID:  uuid.New(),
		Name:  name,
		MaxAP: DefaultMaxAP,
		AP:    DefaultMaxAP,
		HP:    20,
	}
}

func (p *Player) ID() uuid.UUID        { return p.UUID }
func (p *Player) Pos() grid.Coord      { return p.Loc }
func (p *Player) SetPos(c grid.Coord)  { p.Loc = c }
func (p *Player) BlocksMovement() bool { return true }
func (p *Player) BlocksSight() bool    { return false }
func (p *Player) Label() string        { return p.Name }

// Zombie is a non-player agent. The four perception flags fully determine
// its behavior each turn — BehaviorLabel is observability only and is
// never read for control flow.
type Zombie struct {
	UUID uuid.UUID  `json:"id"`
	Kind Kind       `json:"kind"`
	Loc  grid.Coord `json:"pos"`

	// Perception flags, written by the tracker during the player phase
	// and consumed by the behavior resolver during the zombie phase.
	LastSeen       bool       `json:"last_seen"`
	LastSeenCoords grid.Coord `json:"last_seen_coords"`
	HeardNoise     bool       `json:"heard_noise"`
	NoiseCoords    grid.Coord `json:"noise_coords"`

	MaxAP int `json:"max_ap"`
	AP    int `json:"ap"`
	HP    int `json:"hp"`

	// BehaviorLabel names the branch that fired last turn, for logs and
	// the observer API.
	BehaviorLabel string `json:"behavior"`
}

func (z *Zombie) ID() uuid.UUID        { return z.UUID }
func (z *Zombie) Pos() grid.Coord      { return z.Loc }
func (z *Zombie) SetPos(c grid.Coord)  { z.Loc = c }
func (z *Zombie) BlocksMovement() bool { return true }
func (z *Zombie) BlocksSight() bool    { return false }
func (z *Zombie) Label() string        { return z.Kind.String() }

// Alive reports whether the zombie is still in play.
func (z *Zombie) Alive() bool { return z.HP > 0 }

// RefreshAP restores the full per-turn action point budget.
func (z *Zombie) RefreshAP() { z.AP = z.MaxAP }
