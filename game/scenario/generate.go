package scenario

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/maze"
	"github.com/beka-birhanu/vinom-nav/game/pathfinder"
)

// Generator defaults.
const (
	DefaultWidth       = 10
	DefaultHeight      = 10
	DefaultObstacles   = 10
	DefaultAgents      = 6
	defaultMaxAttempts = 1000
)

var (
	ErrGenerationFailed = errors.New("scenario generation failed")
)

// GeneratorConfig parameterizes random scenarios.
type GeneratorConfig struct {
	Width     int
	Height    int
	Obstacles int
	Agents    int

	// RequireReachable resamples start/goal pairs until A* connects them.
	RequireReachable bool

	// MaxAttempts bounds the samples drawn per agent. Zero means a default.
	MaxAttempts int
}

// DefaultGeneratorConfig returns a 10×10 grid with 10 obstacles and 6 agents.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Obstacles: DefaultObstacles,
		Agents:    DefaultAgents,
	}
}

func randomPosition(rng *rand.Rand, width, height int) grid.Position {
	return grid.Position{X: rng.Intn(width), Y: rng.Intn(height)}
}

// Generate places distinct random obstacles, then draws a free start and a
// different free goal for every agent. Agents may share cells.
func Generate(rng *rand.Rand, cfg GeneratorConfig) (*Scenario, error) {
	cells := cfg.Width * cfg.Height
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: width and height must be positive, got %dx%d", ErrInvalidScenario, cfg.Width, cfg.Height)
	}
	if cfg.Obstacles < 0 || cfg.Agents < 0 {
		return nil, fmt.Errorf("%w: obstacle and agent counts must not be negative", ErrInvalidScenario)
	}
	if cfg.Agents > 0 && cells-cfg.Obstacles < 2 {
		return nil, fmt.Errorf("%w: %d obstacles leave fewer than two free cells", ErrInvalidScenario, cfg.Obstacles)
	}
	if cfg.Obstacles > cells {
		return nil, fmt.Errorf("%w: %d obstacles do not fit in %d cells", ErrInvalidScenario, cfg.Obstacles, cells)
	}

	obstacles := make(map[grid.Position]struct{}, cfg.Obstacles)
	list := make([]grid.Position, 0, cfg.Obstacles)
	for len(list) < cfg.Obstacles {
		p := randomPosition(rng, cfg.Width, cfg.Height)
		if _, dup := obstacles[p]; dup {
			continue
		}
		obstacles[p] = struct{}{}
		list = append(list, p)
	}

	g, err := grid.New(cfg.Width, cfg.Height, list)
	if err != nil {
		return nil, err
	}

	sc := &Scenario{Width: cfg.Width, Height: cfg.Height, Obstacles: g.Obstacles()}
	agents, err := placeAgents(g, cfg, func() grid.Position {
		return randomPosition(rng, cfg.Width, cfg.Height)
	})
	if err != nil {
		return nil, err
	}
	sc.Agents = agents
	return sc, nil
}

// FromMaze builds a scenario on the rasterized maze with agents placed on room cells.
// Every pair of rooms is connected, so all goals are reachable.
func FromMaze(rng *rand.Rand, m *maze.WillsonMaze, agents int) (*Scenario, error) {
	g, err := m.Grid()
	if err != nil {
		return nil, err
	}
	if agents > 0 && m.Width*m.Height < 2 {
		return nil, fmt.Errorf("%w: a maze with a single room cannot hold distinct starts and goals", ErrInvalidScenario)
	}

	cfg := GeneratorConfig{Width: g.Width(), Height: g.Height(), Agents: agents}
	placed, err := placeAgents(g, cfg, func() grid.Position {
		return maze.CellCenter(maze.CellPosition{Row: rng.Intn(m.Height), Col: rng.Intn(m.Width)})
	})
	if err != nil {
		return nil, err
	}

	return &Scenario{
		Width:     g.Width(),
		Height:    g.Height(),
		Obstacles: g.Obstacles(),
		Agents:    placed,
	}, nil
}

func placeAgents(g *grid.Grid, cfg GeneratorConfig, sample func() grid.Position) ([]AgentSpec, error) {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	agents := make([]AgentSpec, 0, cfg.Agents)
	for i := 0; i < cfg.Agents; i++ {
		spec, ok := AgentSpec{ID: fmt.Sprintf("agent_%d", i)}, false
		for try := 0; try < attempts && !ok; try++ {
			spec.Start, spec.Goal = sample(), sample()
			if spec.Start == spec.Goal || !g.Passable(spec.Start) || !g.Passable(spec.Goal) {
				continue
			}
			if cfg.RequireReachable {
				if _, reachable := pathfinder.FindPath(g, spec.Start, spec.Goal); !reachable {
					continue
				}
			}
			ok = true
		}
		if !ok {
			return nil, fmt.Errorf("%w: no valid start and goal for %s after %d attempts", ErrGenerationFailed, spec.ID, attempts)
		}
		agents = append(agents, spec)
	}
	return agents, nil
}
