package main

import (
	"encoding/json"
	"fmt"

	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/pathfinder"
	"github.com/spf13/cobra"
)

type plannedPath struct {
	AgentID   string          `json:"agent_id"`
	Reachable bool            `json:"reachable"`
	Cost      int             `json:"cost"`
	Path      []grid.Position `json:"path"`
}

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Plan A* paths for every agent of a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(cmd)
			if err != nil {
				return err
			}
			g, err := sc.Grid()
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			noColor, _ := cmd.Flags().GetBool("no-color")

			plans := make([]plannedPath, 0, len(sc.Agents))
			for _, a := range sc.Agents {
				path, ok := pathfinder.FindPath(g, a.Start, a.Goal)
				plan := plannedPath{AgentID: a.ID, Reachable: ok, Path: path}
				if ok {
					plan.Cost = pathfinder.PathCost(g, path)
				}
				plans = append(plans, plan)
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(plans)
			}

			r := newRenderer(!noColor)
			for _, plan := range plans {
				if !plan.Reachable {
					fmt.Fprintf(w, "%s: no path\n", r.label(plan.AgentID))
					continue
				}
				fmt.Fprintf(w, "%s: cost %d\n", r.label(plan.AgentID), plan.Cost)
				r.renderPath(w, g, plan.Path)
			}
			return nil
		},
	}

	addScenarioFlags(cmd)
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}
