// Package simulation drives a set of learning agents over a shared grid.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-nav/game/agent"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/pathfinder"
	"golang.org/x/sync/errgroup"
)

// Simulation errors.
var (
	ErrDuplicateAgent = errors.New("duplicate agent id")
	ErrAgentNotFound  = errors.New("agent not found")
	ErrForeignGrid    = errors.New("agent belongs to another grid")
)

// Logger is the subset of the service logger used by the driver.
// Implementations must be safe for concurrent use when parallel ticks are on.
type Logger interface {
	Debug(string)
	Info(string)
	Warning(string)
}

type nopLogger struct{}

func (nopLogger) Debug(string)   {}
func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}

// Simulation owns an ordered set of agents that share one read-only grid.
// It is not safe for concurrent use; callers serialize Tick and Snapshot.
type Simulation struct {
	grid     *grid.Grid
	agents   []*agent.LearningAgent
	index    map[string]*agent.LearningAgent
	tick     int
	parallel bool
	workers  int
	seeds    *rand.Rand
	logger   Logger
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithParallel steps agents concurrently within each tick.
func WithParallel(parallel bool) Option {
	return func(s *Simulation) { s.parallel = parallel }
}

// WithWorkers bounds the goroutines used by a parallel tick. Zero or less means one per agent.
func WithWorkers(n int) Option {
	return func(s *Simulation) { s.workers = n }
}

// WithLogger sets the logger that receives agent events.
func WithLogger(l Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSeed makes agent exploration reproducible: every agent added through
// AddAgent gets its own source seeded from this one.
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.seeds = rand.New(rand.NewSource(seed)) }
}

// New creates an empty simulation on g.
func New(g *grid.Grid, opts ...Option) (*Simulation, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: simulation has no grid", agent.ErrInvalidAgent)
	}

	s := &Simulation{
		grid:   g,
		index:  make(map[string]*agent.LearningAgent),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddAgent creates a learning agent on the simulation grid and appends it.
// Caller options are applied after the driver's own, so they may override
// the random source and event handler.
func (s *Simulation) AddAgent(id string, start, goal grid.Position, opts ...agent.Option) (*agent.LearningAgent, error) {
	if _, ok := s.index[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, id)
	}

	base := []agent.Option{agent.WithEventHandler(s.logEvent)}
	if s.seeds != nil {
		base = append(base, agent.WithSeed(s.seeds.Int63()))
	}

	a, err := agent.NewLearning(id, s.grid, start, goal, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	s.agents = append(s.agents, a)
	s.index[id] = a
	return a, nil
}

// Add appends an agent built elsewhere. It must live on the simulation grid.
func (s *Simulation) Add(a *agent.LearningAgent) error {
	if a.Grid() != s.grid {
		return fmt.Errorf("%w: %s", ErrForeignGrid, a.ID())
	}
	if _, ok := s.index[a.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, a.ID())
	}
	s.agents = append(s.agents, a)
	s.index[a.ID()] = a
	return nil
}

// Grid returns the shared grid.
func (s *Simulation) Grid() *grid.Grid { return s.grid }

// Agent looks an agent up by id.
func (s *Simulation) Agent(id string) (*agent.LearningAgent, error) {
	a, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return a, nil
}

// Agents returns the agents in insertion order.
func (s *Simulation) Agents() []*agent.LearningAgent {
	out := make([]*agent.LearningAgent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.tick }

// Done reports whether every agent is terminal.
func (s *Simulation) Done() bool {
	for _, a := range s.agents {
		if a.Active() {
			return false
		}
	}
	return true
}

// Tick steps every active agent once. Sequential ticks follow insertion order;
// parallel ticks return only after every agent has stepped.
func (s *Simulation) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tick++

	if !s.parallel {
		for _, a := range s.agents {
			a.Step()
		}
		return nil
	}

	var eg errgroup.Group
	if s.workers > 0 {
		eg.SetLimit(s.workers)
	}
	for _, a := range s.agents {
		if !a.Active() {
			continue
		}
		a := a
		eg.Go(func() error {
			a.Step()
			return nil
		})
	}
	return eg.Wait()
}

// Run ticks in the background and streams a snapshot after each tick. The
// channel is closed once every agent is terminal, maxTicks ticks have run
// (no limit when maxTicks <= 0), or ctx is done. The caller must not touch
// the simulation until the channel is closed.
func (s *Simulation) Run(ctx context.Context, maxTicks int) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		for n := 0; (maxTicks <= 0 || n < maxTicks) && !s.Done(); n++ {
			if err := s.Tick(ctx); err != nil {
				return
			}
			select {
			case out <- s.Snapshot():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// PlanPath computes an A* path for the agent from its current cell to its goal
// and stores it on the agent. ok is false when the goal is unreachable.
func (s *Simulation) PlanPath(id string) ([]grid.Position, bool, error) {
	a, err := s.Agent(id)
	if err != nil {
		return nil, false, err
	}

	path, ok := pathfinder.FindPath(s.grid, a.Position(), a.Goal())
	a.SetPath(path)
	return path, ok, nil
}

func (s *Simulation) logEvent(ev agent.Event) {
	switch ev.Kind {
	case agent.EventStranded:
		s.logger.Warning(ev.String())
	case agent.EventGoalReached, agent.EventBudgetExceeded:
		s.logger.Info(ev.String())
	default:
		s.logger.Debug(ev.String())
	}
}
