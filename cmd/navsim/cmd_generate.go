package main

import (
	"fmt"
	"os"

	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random scenario as YAML",
		Long: `Generate a random scenario and write it as YAML.

Examples:
  navsim generate --agents 4 --seed 7              # 10x10 grid, 10 obstacles
  navsim generate --maze --width 6 --height 4 -o maze.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(cmd)
			if err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				return sc.Encode(cmd.OutOrStdout())
			}

			return writeScenarioFile(out, sc)
		},
	}

	addScenarioFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Write the scenario to this file instead of stdout")
	return cmd
}

func writeScenarioFile(path string, sc *scenario.Scenario) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return sc.Encode(f)
}
