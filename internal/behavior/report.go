package behavior

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/deadgrid/internal/grid"
)

// Branch names the resolver branch that fired.
type Branch string

const (
	BranchChase       Branch = "chase"
	BranchInvestigate Branch = "investigate"
	BranchNoise       Branch = "noise"
	BranchWander      Branch = "wander"
)

// ActionKind enumerates what an agent did within its turn.
type ActionKind uint8

const (
	ActionMove    ActionKind = iota // One-cell step, costs 1 AP
	ActionAttack                    // Strike at the adjacent player, costs 1 AP
	ActionBlocked                   // Every movement option exhausted, no AP cost
	ActionIdle                      // Stub branch resolved with no movement
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionBlocked:
		return "blocked"
	case ActionIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// TurnAction is a single resolved action within a turn.
type TurnAction struct {
	Kind   ActionKind `json:"kind"`
	From   grid.Coord `json:"from"`
	To     grid.Coord `json:"to"`
	Reason string     `json:"reason,omitempty"`
}

func (a TurnAction) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("move %s -> %s", a.From, a.To)
	case ActionAttack:
		return fmt.Sprintf("attack from %s", a.From)
	case ActionBlocked:
		return fmt.Sprintf("blocked at %s (%s)", a.From, a.Reason)
	default:
		return fmt.Sprintf("idle (%s)", a.Reason)
	}
}

// TurnReport is the structured outcome of one agent's turn. The
// orchestrator decides how to surface it — log, metric, or silent.
type TurnReport struct {
	AgentID    uuid.UUID    `json:"agent_id"`
	AgentLabel string       `json:"agent"`
	Branch     Branch       `json:"branch"` // Last branch that fired
	Branches   []Branch     `json:"branches"`
	Actions    []TurnAction `json:"actions"`
	APSpent    int          `json:"ap_spent"`
	APLeft     int          `json:"ap_left"`
	Attacked   bool         `json:"attacked"`
}

func (r *TurnReport) fire(b Branch) {
	r.Branch = b
	if n := len(r.Branches); n == 0 || r.Branches[n-1] != b {
		r.Branches = append(r.Branches, b)
	}
}

func (r *TurnReport) record(a TurnAction) {
	r.Actions = append(r.Actions, a)
}

// Moves counts the single-cell steps taken this turn.
func (r *TurnReport) Moves() int {
	n := 0
	for _, a := range r.Actions {
		if a.Kind == ActionMove {
			n++
		}
	}
	return n
}
