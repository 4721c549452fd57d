package scenario

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/beka-birhanu/vinom-nav/game/agent"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/maze"
	"github.com/beka-birhanu/vinom-nav/game/pathfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: corridor
width: 5
height: 3
obstacles:
  - {x: 2, y: 0}
  - {x: 2, y: 1}
agents:
  - id: north
    start: {x: 0, y: 0}
    goal: {x: 4, y: 0}
  - id: south
    start: {x: 4, y: 2}
    goal: {x: 0, y: 2}
learning:
  learning_rate: 0.5
  exploration_rate: 0
  mapping: compass
seed: 7
`

func TestLoad(t *testing.T) {
	sc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "corridor", sc.Name)
	assert.Equal(t, 5, sc.Width)
	assert.Equal(t, []grid.Position{{X: 2, Y: 0}, {X: 2, Y: 1}}, sc.Obstacles)
	require.Len(t, sc.Agents, 2)
	assert.Equal(t, AgentSpec{ID: "south", Start: grid.Position{X: 4, Y: 2}, Goal: grid.Position{X: 0, Y: 2}}, sc.Agents[1])
	require.NotNil(t, sc.Learning.LearningRate)
	assert.Equal(t, 0.5, *sc.Learning.LearningRate)
	assert.Nil(t, sc.Learning.DiscountFactor)
	assert.Equal(t, int64(7), sc.Seed)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "width: 3\nheight: 3\ncolour: red\n",
		"bad dimensions": "width: 0\nheight: 3\n",
		"duplicate id":   "width: 3\nheight: 3\nagents:\n  - {id: a}\n  - {id: a}\n",
		"missing id":     "width: 3\nheight: 3\nagents:\n  - {start: {x: 1, y: 1}}\n",
		"bad mapping":    "width: 3\nheight: 3\nlearning: {mapping: diagonal}\n",
		"not yaml":       "width: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestBuild(t *testing.T) {
	sc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	sim, err := sc.Build()
	require.NoError(t, err)
	require.Len(t, sim.Agents(), 2)

	north, err := sim.Agent("north")
	require.NoError(t, err)
	assert.Equal(t, 0.5, north.LearningRate())
	assert.Equal(t, agent.DefaultDiscountFactor, north.DiscountFactor())
	assert.Equal(t, 0.0, north.ExplorationRate())
	assert.Equal(t, agent.MappingCompass, north.Mapping())
	assert.False(t, sim.Grid().Passable(grid.Position{X: 2, Y: 1}))

	require.NoError(t, sim.Tick(context.Background()))
	assert.Equal(t, 1, sim.Ticks())
}

func TestEncodeRoundTrip(t *testing.T) {
	sc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sc.Encode(&buf))

	again, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, sc, again)
}

func TestGenerate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		sc, err := Generate(rand.New(rand.NewSource(1)), DefaultGeneratorConfig())
		require.NoError(t, err)

		assert.Len(t, sc.Obstacles, DefaultObstacles)
		require.Len(t, sc.Agents, DefaultAgents)
		g, err := sc.Grid()
		require.NoError(t, err)
		for i, a := range sc.Agents {
			assert.Equal(t, "agent_"+string(rune('0'+i)), a.ID)
			assert.NotEqual(t, a.Start, a.Goal)
			assert.True(t, g.Passable(a.Start))
			assert.True(t, g.Passable(a.Goal))
			assert.True(t, g.InBounds(a.Start))
			assert.True(t, g.InBounds(a.Goal))
		}
		require.NoError(t, sc.Validate())
	})

	t.Run("reachable", func(t *testing.T) {
		cfg := GeneratorConfig{Width: 8, Height: 8, Obstacles: 24, Agents: 5, RequireReachable: true}
		sc, err := Generate(rand.New(rand.NewSource(4)), cfg)
		require.NoError(t, err)

		g, err := sc.Grid()
		require.NoError(t, err)
		for _, a := range sc.Agents {
			_, ok := pathfinder.FindPath(g, a.Start, a.Goal)
			assert.True(t, ok, "%s: %s -> %s", a.ID, a.Start, a.Goal)
		}
	})

	t.Run("seeded", func(t *testing.T) {
		a, err := Generate(rand.New(rand.NewSource(11)), DefaultGeneratorConfig())
		require.NoError(t, err)
		b, err := Generate(rand.New(rand.NewSource(11)), DefaultGeneratorConfig())
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("invalid", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		_, err := Generate(rng, GeneratorConfig{Width: -1, Height: 3})
		assert.ErrorIs(t, err, ErrInvalidScenario)
		_, err = Generate(rng, GeneratorConfig{Width: 2, Height: 1, Obstacles: 1, Agents: 1})
		assert.ErrorIs(t, err, ErrInvalidScenario)
	})

	t.Run("gives up", func(t *testing.T) {
		cfg := GeneratorConfig{Width: 3, Height: 1, Agents: 1, MaxAttempts: 5}
		// A sampler that only ever yields one cell cannot produce start != goal.
		g, err := grid.New(3, 1, nil)
		require.NoError(t, err)
		_, err = placeAgents(g, cfg, func() grid.Position { return grid.Position{X: 0, Y: 0} })
		assert.ErrorIs(t, err, ErrGenerationFailed)
	})
}

func TestFromMaze(t *testing.T) {
	m, err := maze.New(5, 4, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	sc, err := FromMaze(rand.New(rand.NewSource(3)), m, 3)
	require.NoError(t, err)
	assert.Equal(t, 11, sc.Width)
	assert.Equal(t, 9, sc.Height)
	require.Len(t, sc.Agents, 3)

	g, err := sc.Grid()
	require.NoError(t, err)
	for _, a := range sc.Agents {
		assert.Equal(t, 1, a.Start.X%2)
		assert.Equal(t, 1, a.Goal.Y%2)
		_, ok := pathfinder.FindPath(g, a.Start, a.Goal)
		assert.True(t, ok)
	}

	single, err := maze.New(1, 1, nil)
	require.NoError(t, err)
	_, err = FromMaze(rand.New(rand.NewSource(3)), single, 1)
	assert.ErrorIs(t, err, ErrInvalidScenario)
}

func TestCheckLimits(t *testing.T) {
	sc, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, sc.CheckLimits(DefaultLimits()))
	require.NoError(t, sc.CheckLimits(Limits{}))

	cases := map[string]Limits{
		"width":     {MaxWidth: 4},
		"height":    {MaxHeight: 2},
		"agents":    {MaxAgents: 1},
		"obstacles": {MaxObstacles: 1},
	}
	for name, l := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, sc.CheckLimits(l), ErrInvalidScenario)
		})
	}

	huge := &Scenario{Width: 2000, Height: 2000, Agents: []AgentSpec{{ID: "a"}}}
	assert.ErrorIs(t, huge.CheckLimits(DefaultLimits()), ErrInvalidScenario)
}
