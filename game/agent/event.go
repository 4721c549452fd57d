package agent

import (
	"fmt"

	"github.com/beka-birhanu/vinom-nav/game/grid"
)

// EventKind identifies what happened to an agent during a tick.
type EventKind int

const (
	EventMoved EventKind = iota
	EventGoalReached
	EventBudgetExceeded
	EventStranded
)

// String returns a short label for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventMoved:
		return "moved"
	case EventGoalReached:
		return "goal_reached"
	case EventBudgetExceeded:
		return "budget_exceeded"
	case EventStranded:
		return "stranded"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event reports the outcome of one agent tick.
type Event struct {
	AgentID  string
	Kind     EventKind
	Position grid.Position // Position after the tick
	Step     int           // Steps taken after the tick
	Action   int           // Chosen action, only for EventMoved
	Reward   float64       // Observed reward, only for EventMoved
}

// String describes the event for logs.
func (e Event) String() string {
	switch e.Kind {
	case EventGoalReached:
		return fmt.Sprintf("agent %s reached its goal at %s", e.AgentID, e.Position)
	case EventBudgetExceeded:
		return fmt.Sprintf("agent %s exceeded its step limit at %s, stopping", e.AgentID, e.Position)
	case EventStranded:
		return fmt.Sprintf("agent %s has no valid neighbors to move to from %s", e.AgentID, e.Position)
	default:
		return fmt.Sprintf("agent %s moved to %s (action=%d reward=%.0f step=%d)", e.AgentID, e.Position, e.Action, e.Reward, e.Step)
	}
}

// EventHandler receives every event emitted by an agent.
// It is called synchronously from the agent's tick.
type EventHandler func(Event)
