package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-nav/game/maze"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/spf13/cobra"
)

// addScenarioFlags registers the flags shared by commands that need a scenario.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("scenario", "s", "", "Scenario YAML file; a random scenario is generated when empty")
	cmd.Flags().Int("width", scenario.DefaultWidth, "Grid width (maze rooms with --maze)")
	cmd.Flags().Int("height", scenario.DefaultHeight, "Grid height (maze rooms with --maze)")
	cmd.Flags().Int("obstacles", scenario.DefaultObstacles, "Number of random obstacles")
	cmd.Flags().Int("agents", scenario.DefaultAgents, "Number of agents")
	cmd.Flags().Bool("reachable", false, "Only place agents whose goal A* can reach")
	cmd.Flags().Bool("maze", false, "Generate a maze instead of scattered obstacles")
	cmd.Flags().Int64("seed", 0, "Random seed; 0 picks one from the clock")
}

// loadScenario reads --scenario or generates one from the generator flags.
func loadScenario(cmd *cobra.Command) (*scenario.Scenario, error) {
	path, _ := cmd.Flags().GetString("scenario")
	if path != "" {
		return scenario.LoadFile(path)
	}

	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	obstacles, _ := cmd.Flags().GetInt("obstacles")
	agents, _ := cmd.Flags().GetInt("agents")
	reachable, _ := cmd.Flags().GetBool("reachable")
	useMaze, _ := cmd.Flags().GetBool("maze")
	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var (
		sc  *scenario.Scenario
		err error
	)
	if useMaze {
		m, mazeErr := maze.New(width, height, rng)
		if mazeErr != nil {
			return nil, mazeErr
		}
		sc, err = scenario.FromMaze(rng, m, agents)
	} else {
		sc, err = scenario.Generate(rng, scenario.GeneratorConfig{
			Width:            width,
			Height:           height,
			Obstacles:        obstacles,
			Agents:           agents,
			RequireReachable: reachable,
		})
	}
	if err != nil {
		return nil, err
	}
	sc.Name = fmt.Sprintf("generated-%d", seed)
	sc.Seed = seed
	return sc, nil
}
