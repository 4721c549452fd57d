// Command navsim runs grid navigation simulations from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "navsim",
		Short: "Multi-agent grid navigation with A* and Q-learning",
		Long: `navsim simulates agents that learn to reach their goals on a grid with
obstacles using tabular Q-learning, and plans reference paths with A*.

Scenarios are read from YAML files or generated at random.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "Agent event log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newPathCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "navsim version %s\n", version)
		},
	}
}
