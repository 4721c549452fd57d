package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/game/scenario"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	logger "github.com/beka-birhanu/vinom-nav/infrastruture/log"
	"github.com/beka-birhanu/vinom-nav/infrastruture/repo"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const agentLogColor = "\033[33m"

type runOptions struct {
	maxTicks int
	parallel bool
	workers  int
	every    int
	chart    string
	db       string
	jsonOut  bool
	noColor  bool
	logLevel string
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation until every agent stops",
		Long: `Run a simulation until every agent has reached its goal or used up its
step budget, then print the status panel.

Examples:
  navsim run --agents 6 --seed 3                 # random 10x10 scenario
  navsim run -s corridor.yaml --every 5          # draw the grid every 5 ticks
  navsim run --maze --chart run.html --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(cmd)
			if err != nil {
				return err
			}

			o := runOptions{}
			o.maxTicks, _ = cmd.Flags().GetInt("max-ticks")
			o.parallel, _ = cmd.Flags().GetBool("parallel")
			o.workers, _ = cmd.Flags().GetInt("workers")
			o.every, _ = cmd.Flags().GetInt("every")
			o.chart, _ = cmd.Flags().GetString("chart")
			o.db, _ = cmd.Flags().GetString("db")
			o.jsonOut, _ = cmd.Flags().GetBool("json")
			o.noColor, _ = cmd.Flags().GetBool("no-color")
			o.logLevel, _ = cmd.Flags().GetString("log-level")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runScenario(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), sc, o)
		},
	}

	addScenarioFlags(cmd)
	cmd.Flags().Int("max-ticks", 0, "Stop after this many ticks; 0 runs until every agent stops")
	cmd.Flags().Bool("parallel", false, "Step agents concurrently within a tick")
	cmd.Flags().Int("workers", 0, "Concurrent agents per tick with --parallel; 0 means no limit")
	cmd.Flags().Int("every", 0, "Draw the grid every N ticks; 0 draws only the final grid")
	cmd.Flags().String("chart", "", "Write an HTML chart of distance to goal per tick")
	cmd.Flags().String("db", "", "Save the run report to this SQLite database")
	cmd.Flags().Bool("json", false, "Print the run report as JSON instead of the status panel")
	return cmd
}

func runScenario(ctx context.Context, out, errOut io.Writer, sc *scenario.Scenario, o runOptions) error {
	color := agentLogColor
	if o.noColor {
		color = ""
	}
	agentLogger, err := logger.New("AGENT", color, errOut, logger.WithLevel(logger.ParseLevel(o.logLevel)))
	if err != nil {
		return err
	}

	simOpts := []simulation.Option{simulation.WithLogger(agentLogger), simulation.WithParallel(o.parallel)}
	if o.workers > 0 {
		simOpts = append(simOpts, simulation.WithWorkers(o.workers))
	}
	sim, err := sc.Build(simOpts...)
	if err != nil {
		return err
	}

	r := newRenderer(!o.noColor)
	startedAt := time.Now().UTC()
	history := []simulation.Snapshot{sim.Snapshot()}
	for snap := range sim.Run(ctx, o.maxTicks) {
		history = append(history, snap)
		if !o.jsonOut && o.every > 0 && snap.Tick%o.every == 0 {
			fmt.Fprintf(out, "tick %d\n", snap.Tick)
			r.renderGrid(out, sim.Grid(), snap.Agents)
		}
	}
	if ctx.Err() != nil {
		fmt.Fprintln(errOut, "interrupted")
	}

	final := sim.Snapshot()
	report := dmn.NewRunReport(dmn.RunReportConfig{
		ID:         uuid.New(),
		Scenario:   sc.Name,
		Width:      sc.Width,
		Height:     sc.Height,
		Snapshot:   final,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	})

	if o.chart != "" {
		if err := saveChart(o.chart, sc.Name, history); err != nil {
			return err
		}
	}
	if o.db != "" {
		if err := saveReport(o.db, report); err != nil {
			return err
		}
	}

	if o.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	r.renderGrid(out, sim.Grid(), final.Agents)
	fmt.Fprint(out, final.Summary())
	fmt.Fprintf(out, "%d/%d agents reached their goals\n", report.Reached, len(report.Outcomes))
	return nil
}

func saveChart(path, title string, history []simulation.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing chart: %w", cerr)
		}
	}()
	if err := writeChart(f, title, history); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func saveReport(path string, report *dmn.RunReport) (err error) {
	store, err := repo.NewSQLiteRunRepo(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing report store: %w", cerr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Save(ctx, report)
}
