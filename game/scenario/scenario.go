// Package scenario describes simulation setups: grid layout, agents and
// learning parameters. Scenarios are loaded from YAML, generated at random or
// derived from a maze.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beka-birhanu/vinom-nav/game/agent"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
)

// AgentSpec places one agent.
type AgentSpec struct {
	ID    string        `json:"id" yaml:"id"`
	Start grid.Position `json:"start" yaml:"start"`
	Goal  grid.Position `json:"goal" yaml:"goal"`
}

// Learning overrides the agent hyperparameters. Nil fields keep the defaults.
type Learning struct {
	LearningRate    *float64 `json:"learning_rate,omitempty" yaml:"learning_rate,omitempty"`
	DiscountFactor  *float64 `json:"discount_factor,omitempty" yaml:"discount_factor,omitempty"`
	ExplorationRate *float64 `json:"exploration_rate,omitempty" yaml:"exploration_rate,omitempty"`
	Mapping         string   `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// Scenario is a complete simulation setup.
type Scenario struct {
	Name      string          `json:"name,omitempty" yaml:"name,omitempty"`
	Width     int             `json:"width" yaml:"width"`
	Height    int             `json:"height" yaml:"height"`
	Obstacles []grid.Position `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	Agents    []AgentSpec     `json:"agents" yaml:"agents"`
	Learning  Learning        `json:"learning,omitempty" yaml:"learning,omitempty"`
	Seed      int64           `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Validate checks dimensions and agent ids. Passability of starts and goals
// is not required.
func (s *Scenario) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: width and height must be positive, got %dx%d", ErrInvalidScenario, s.Width, s.Height)
	}

	seen := make(map[string]struct{}, len(s.Agents))
	for i, a := range s.Agents {
		if a.ID == "" {
			return fmt.Errorf("%w: agent %d has no id", ErrInvalidScenario, i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: duplicate agent id %s", ErrInvalidScenario, a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	if _, err := agent.ParseActionMapping(s.Learning.Mapping); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	return nil
}

// Size caps applied to scenarios that arrive over the network.
const (
	DefaultMaxSide   = 128
	DefaultMaxAgents = 64
)

// Limits bounds scenario size. A zero field leaves that dimension unbounded.
type Limits struct {
	MaxWidth     int
	MaxHeight    int
	MaxAgents    int
	MaxObstacles int
}

// DefaultLimits allows a 128×128 grid with up to 64 agents.
func DefaultLimits() Limits {
	return Limits{
		MaxWidth:     DefaultMaxSide,
		MaxHeight:    DefaultMaxSide,
		MaxAgents:    DefaultMaxAgents,
		MaxObstacles: DefaultMaxSide * DefaultMaxSide,
	}
}

// CheckLimits rejects scenarios larger than l.
func (s *Scenario) CheckLimits(l Limits) error {
	if l.MaxWidth > 0 && s.Width > l.MaxWidth {
		return fmt.Errorf("%w: width %d exceeds %d", ErrInvalidScenario, s.Width, l.MaxWidth)
	}
	if l.MaxHeight > 0 && s.Height > l.MaxHeight {
		return fmt.Errorf("%w: height %d exceeds %d", ErrInvalidScenario, s.Height, l.MaxHeight)
	}
	if l.MaxAgents > 0 && len(s.Agents) > l.MaxAgents {
		return fmt.Errorf("%w: %d agents exceed %d", ErrInvalidScenario, len(s.Agents), l.MaxAgents)
	}
	if l.MaxObstacles > 0 && len(s.Obstacles) > l.MaxObstacles {
		return fmt.Errorf("%w: %d obstacles exceed %d", ErrInvalidScenario, len(s.Obstacles), l.MaxObstacles)
	}
	return nil
}

// AgentOptions converts the learning overrides into agent options.
func (s *Scenario) AgentOptions() ([]agent.Option, error) {
	var opts []agent.Option
	if s.Learning.LearningRate != nil {
		opts = append(opts, agent.WithLearningRate(*s.Learning.LearningRate))
	}
	if s.Learning.DiscountFactor != nil {
		opts = append(opts, agent.WithDiscountFactor(*s.Learning.DiscountFactor))
	}
	if s.Learning.ExplorationRate != nil {
		opts = append(opts, agent.WithExplorationRate(*s.Learning.ExplorationRate))
	}

	mapping, err := agent.ParseActionMapping(s.Learning.Mapping)
	if err != nil {
		return nil, err
	}
	return append(opts, agent.WithActionMapping(mapping)), nil
}

// Grid builds the occupancy grid.
func (s *Scenario) Grid() (*grid.Grid, error) {
	return grid.New(s.Width, s.Height, s.Obstacles)
}

// Build creates the grid and a simulation holding every agent. A non-zero
// Seed makes exploration reproducible unless opts override it.
func (s *Scenario) Build(opts ...simulation.Option) (*simulation.Simulation, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	g, err := s.Grid()
	if err != nil {
		return nil, err
	}

	if s.Seed != 0 {
		opts = append([]simulation.Option{simulation.WithSeed(s.Seed)}, opts...)
	}
	sim, err := simulation.New(g, opts...)
	if err != nil {
		return nil, err
	}

	agentOpts, err := s.AgentOptions()
	if err != nil {
		return nil, err
	}
	for _, a := range s.Agents {
		if _, err := sim.AddAgent(a.ID, a.Start, a.Goal, agentOpts...); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

// Load decodes and validates a YAML scenario.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a YAML scenario from path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Encode writes the scenario as YAML.
func (s *Scenario) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	return enc.Close()
}
