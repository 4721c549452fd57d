package agent

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-nav/game/grid"
)

// Default hyperparameters.
const (
	DefaultLearningRate    = 0.1
	DefaultDiscountFactor  = 0.9
	DefaultExplorationRate = 0.2
)

// ActionMapping decides how an action index becomes a destination cell.
type ActionMapping int

const (
	// MappingWrap picks neighbors[action % len(neighbors)]. When fewer than four
	// neighbors exist several actions land on the same cell, and the direction an
	// action stands for depends on the obstacles around the state.
	MappingWrap ActionMapping = iota

	// MappingCompass binds each action to a fixed direction (+x, -x, +y, -y).
	// A blocked direction keeps the agent in place and is rewarded -1.
	MappingCompass
)

// String returns the mapping name accepted by ParseActionMapping.
func (m ActionMapping) String() string {
	if m == MappingCompass {
		return "compass"
	}
	return "wrap"
}

// ParseActionMapping maps "wrap" or "compass" to an ActionMapping.
func ParseActionMapping(s string) (ActionMapping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap":
		return MappingWrap, nil
	case "compass":
		return MappingCompass, nil
	default:
		return MappingWrap, fmt.Errorf("unknown action mapping %q", s)
	}
}

// LearningAgent navigates with an epsilon-greedy tabular Q-learning policy.
type LearningAgent struct {
	*Agent

	values          *QTable
	learningRate    float64 // alpha
	discountFactor  float64 // gamma
	explorationRate float64 // epsilon
	rng             *rand.Rand
	mapping         ActionMapping
	onEvent         EventHandler
}

// Option configures a LearningAgent.
type Option func(*LearningAgent)

// WithLearningRate sets alpha.
func WithLearningRate(alpha float64) Option {
	return func(a *LearningAgent) { a.learningRate = alpha }
}

// WithDiscountFactor sets gamma.
func WithDiscountFactor(gamma float64) Option {
	return func(a *LearningAgent) { a.discountFactor = gamma }
}

// WithExplorationRate sets epsilon.
func WithExplorationRate(epsilon float64) Option {
	return func(a *LearningAgent) { a.explorationRate = epsilon }
}

// WithRand sets the random source used for exploration.
func WithRand(rng *rand.Rand) Option {
	return func(a *LearningAgent) { a.rng = rng }
}

// WithSeed seeds a private random source for exploration.
func WithSeed(seed int64) Option {
	return func(a *LearningAgent) { a.rng = rand.New(rand.NewSource(seed)) }
}

// WithActionMapping selects how actions become moves.
func WithActionMapping(m ActionMapping) Option {
	return func(a *LearningAgent) { a.mapping = m }
}

// WithEventHandler registers a callback for every emitted event.
func WithEventHandler(h EventHandler) Option {
	return func(a *LearningAgent) { a.onEvent = h }
}

// NewLearning creates a learning agent. Hyperparameters must lie in [0, 1].
func NewLearning(id string, g *grid.Grid, start, goal grid.Position, opts ...Option) (*LearningAgent, error) {
	base, err := New(id, g, start, goal)
	if err != nil {
		return nil, err
	}

	a := &LearningAgent{
		Agent:           base,
		values:          NewQTable(),
		learningRate:    DefaultLearningRate,
		discountFactor:  DefaultDiscountFactor,
		explorationRate: DefaultExplorationRate,
		mapping:         MappingWrap,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := checkUnit("learning rate", a.learningRate); err != nil {
		return nil, err
	}
	if err := checkUnit("discount factor", a.discountFactor); err != nil {
		return nil, err
	}
	if err := checkUnit("exploration rate", a.explorationRate); err != nil {
		return nil, err
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return a, nil
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 || v != v {
		return fmt.Errorf("%w: %s must be between 0 and 1 (got %v)", ErrInvalidHyperparameter, name, v)
	}
	return nil
}

// Values returns the agent's Q-table.
func (a *LearningAgent) Values() *QTable { return a.values }

// LearningRate returns alpha.
func (a *LearningAgent) LearningRate() float64 { return a.learningRate }

// DiscountFactor returns gamma.
func (a *LearningAgent) DiscountFactor() float64 { return a.discountFactor }

// ExplorationRate returns epsilon.
func (a *LearningAgent) ExplorationRate() float64 { return a.explorationRate }

// Mapping returns the action mapping mode.
func (a *LearningAgent) Mapping() ActionMapping { return a.mapping }

// ChooseAction picks an action for state: uniformly at random with probability
// epsilon, otherwise the first action with the highest estimate.
func (a *LearningAgent) ChooseAction(state grid.Position) int {
	if a.rng.Float64() < a.explorationRate {
		return a.rng.Intn(NumActions)
	}
	return a.values.row(state).Argmax()
}

// Reward returns +1 when next is strictly closer to the goal than current, -1 otherwise.
func (a *LearningAgent) Reward(current, next grid.Position) float64 {
	if grid.Manhattan(next, a.goal) < grid.Manhattan(current, a.goal) {
		return 1
	}
	return -1
}

// UpdateValue applies the one-step temporal-difference rule
// Q(s,a) += alpha * (r + gamma * max Q(s',.) - Q(s,a)).
func (a *LearningAgent) UpdateValue(state grid.Position, action int, reward float64, next grid.Position) {
	target := reward + a.discountFactor*a.values.row(next).Max()
	values := a.values.row(state)
	values[action] += a.learningRate * (target - values[action])
}

// destination maps an action to the cell the agent ends up in.
func (a *LearningAgent) destination(current grid.Position, action int, neighbors []grid.Position) grid.Position {
	if a.mapping == MappingCompass {
		next := current.Translate(grid.Direction(action))
		if !a.grid.InBounds(next) || !a.grid.Passable(next) {
			return current
		}
		return next
	}
	return neighbors[action%len(neighbors)]
}

// Step advances the agent by one decision. It returns false when the agent
// was already terminal and did nothing.
func (a *LearningAgent) Step() (Event, bool) {
	if !a.Active() {
		return Event{}, false
	}

	if ev, done := a.checkTerminal(); done {
		a.emit(ev)
		return ev, true
	}

	current := a.position
	neighbors := a.grid.Neighbors(current)
	if len(neighbors) == 0 {
		a.idleTicks++
		ev := a.event(EventStranded)
		a.emit(ev)
		return ev, true
	}

	action := a.ChooseAction(current)
	next := a.destination(current, action, neighbors)
	reward := a.Reward(current, next)

	a.position = next
	a.UpdateValue(current, action, reward, next)
	a.stepsTaken++

	ev := a.event(EventMoved)
	ev.Action = action
	ev.Reward = reward
	a.emit(ev)
	return ev, true
}

func (a *LearningAgent) emit(ev Event) {
	if a.onEvent != nil {
		a.onEvent(ev)
	}
}
