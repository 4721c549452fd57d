package simulation

import (
	"fmt"
	"strings"

	"github.com/beka-birhanu/vinom-nav/game/agent"
)

// Snapshot is a point-in-time view of a simulation.
type Snapshot struct {
	Tick       int           `json:"tick"`
	Agents     []agent.State `json:"agents"`
	TotalSteps int           `json:"total_steps"`
	Active     int           `json:"active"`
	Done       bool          `json:"done"`
}

// Snapshot collects the state of every agent without mutating anything.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   s.tick,
		Agents: make([]agent.State, 0, len(s.agents)),
	}
	for _, a := range s.agents {
		snap.Agents = append(snap.Agents, a.State())
		snap.TotalSteps += a.StepsTaken()
		if a.Active() {
			snap.Active++
		}
	}
	snap.Done = snap.Active == 0
	return snap
}

// Reached returns the ids of agents that reached their goals.
func (snap Snapshot) Reached() []string {
	var ids []string
	for _, st := range snap.Agents {
		if st.Status == agent.StatusGoalReached.String() {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// Summary renders the status panel: total steps followed by one line per agent.
func (snap Snapshot) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d, total steps %d\n", snap.Tick, snap.TotalSteps)
	for _, st := range snap.Agents {
		fmt.Fprintf(&b, "agent %s: %d/%d steps, %s\n", st.ID, st.StepsTaken, st.MaxSteps, statusLabel(st.Status))
	}
	return b.String()
}

func statusLabel(status string) string {
	switch status {
	case agent.StatusGoalReached.String():
		return agent.StatusGoalReached.Label()
	case agent.StatusBudgetExhausted.String():
		return agent.StatusBudgetExhausted.Label()
	default:
		return agent.StatusActive.Label()
	}
}
