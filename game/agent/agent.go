/*
Package agent models the navigating agents of a simulation.

An Agent carries position, goal, step budget and lifecycle status. A LearningAgent
specializes it with a tabular Q-learning policy that picks one neighbor per tick.

Lifecycle: Active -> GoalReached | BudgetExhausted. Terminal statuses are permanent.
*/
package agent

import (
	"errors"
	"fmt"
	"slices"

	"github.com/beka-birhanu/vinom-nav/game/grid"
)

// budgetFactor scales the initial start-goal distance into the step budget.
const budgetFactor = 30

// Agent errors.
var (
	ErrInvalidAgent          = errors.New("invalid agent")
	ErrInvalidHyperparameter = errors.New("invalid hyperparameter")
)

// Status is the lifecycle state of an agent.
type Status int

const (
	StatusActive Status = iota
	StatusGoalReached
	StatusBudgetExhausted
)

// String returns a short label for the status.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusGoalReached:
		return "goal_reached"
	case StatusBudgetExhausted:
		return "budget_exhausted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Label returns the human-readable form shown in status panels.
func (s Status) Label() string {
	switch s {
	case StatusGoalReached:
		return "goal reached"
	case StatusBudgetExhausted:
		return "stopped (step limit)"
	default:
		return "moving"
	}
}

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	return s != StatusActive
}

// Agent holds the state shared by every navigation strategy.
type Agent struct {
	id              string
	grid            *grid.Grid
	start           grid.Position
	position        grid.Position
	goal            grid.Position
	path            []grid.Position
	initialDistance int
	maxSteps        int
	stepsTaken      int
	idleTicks       int
	status          Status
}

// State is a read-only copy of an agent's observable fields.
type State struct {
	ID              string          `json:"id"`
	Start           grid.Position   `json:"start"`
	Position        grid.Position   `json:"position"`
	Goal            grid.Position   `json:"goal"`
	Path            []grid.Position `json:"path,omitempty"`
	InitialDistance int             `json:"initial_distance"`
	StepsTaken      int             `json:"steps_taken"`
	IdleTicks       int             `json:"idle_ticks"`
	MaxSteps        int             `json:"max_steps"`
	Status          string          `json:"status"`
}

// New creates an active agent at start heading for goal.
// Start and goal are not checked for passability.
func New(id string, g *grid.Grid, start, goal grid.Position) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidAgent)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: agent %s has no grid", ErrInvalidAgent, id)
	}

	distance := grid.Manhattan(start, goal)
	return &Agent{
		id:              id,
		grid:            g,
		start:           start,
		position:        start,
		goal:            goal,
		initialDistance: distance,
		maxSteps:        distance * budgetFactor,
		status:          StatusActive,
	}, nil
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Grid returns the shared grid.
func (a *Agent) Grid() *grid.Grid { return a.grid }

// Start returns the cell the agent was created on.
func (a *Agent) Start() grid.Position { return a.start }

// Position returns the current cell.
func (a *Agent) Position() grid.Position { return a.position }

// Goal returns the target cell.
func (a *Agent) Goal() grid.Position { return a.goal }

// InitialDistance returns the Manhattan distance between start and goal.
func (a *Agent) InitialDistance() int { return a.initialDistance }

// MaxSteps returns the step budget.
func (a *Agent) MaxSteps() int { return a.maxSteps }

// StepsTaken returns the number of moves made so far.
func (a *Agent) StepsTaken() int { return a.stepsTaken }

// IdleTicks returns the number of ticks spent without any neighbor to move to.
func (a *Agent) IdleTicks() int { return a.idleTicks }

// Status returns the lifecycle status.
func (a *Agent) Status() Status { return a.status }

// Active reports whether the agent still acts on ticks.
func (a *Agent) Active() bool { return a.status == StatusActive }

// Path returns a copy of the planned path set by an external planner.
func (a *Agent) Path() []grid.Position { return slices.Clone(a.path) }

// SetPath stores a planned path. The learning loop does not follow it.
func (a *Agent) SetPath(path []grid.Position) {
	a.path = slices.Clone(path)
}

// DistanceToGoal returns the Manhattan distance from the current cell to the goal.
func (a *Agent) DistanceToGoal() int {
	return grid.Manhattan(a.position, a.goal)
}

// State returns a snapshot of the observable fields without mutating the agent.
func (a *Agent) State() State {
	return State{
		ID:              a.id,
		Start:           a.start,
		Position:        a.position,
		Goal:            a.goal,
		Path:            a.Path(),
		InitialDistance: a.initialDistance,
		StepsTaken:      a.stepsTaken,
		IdleTicks:       a.idleTicks,
		MaxSteps:        a.maxSteps,
		Status:          a.status.String(),
	}
}

// budgetSpent reports whether moves plus idle ticks have used the step budget.
func (a *Agent) budgetSpent() bool {
	return a.stepsTaken+a.idleTicks >= a.maxSteps
}

// checkTerminal moves the agent to a terminal status when its goal is reached
// or its budget is spent, returning the event to emit.
func (a *Agent) checkTerminal() (Event, bool) {
	if a.position == a.goal {
		a.status = StatusGoalReached
		return a.event(EventGoalReached), true
	}
	if a.budgetSpent() {
		a.status = StatusBudgetExhausted
		return a.event(EventBudgetExceeded), true
	}
	return Event{}, false
}

func (a *Agent) event(kind EventKind) Event {
	return Event{
		AgentID:  a.id,
		Kind:     kind,
		Position: a.position,
		Step:     a.stepsTaken,
	}
}
