package main

import (
	"fmt"
	"io"

	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/beka-birhanu/vinom-nav/game/simulation"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// distanceSeries returns, per agent, its Manhattan distance to the goal after
// every snapshot in history.
func distanceSeries(history []simulation.Snapshot) ([]string, map[string][]int) {
	series := make(map[string][]int)
	var order []string
	for _, snap := range history {
		for _, st := range snap.Agents {
			if _, ok := series[st.ID]; !ok {
				order = append(order, st.ID)
			}
			series[st.ID] = append(series[st.ID], grid.Manhattan(st.Position, st.Goal))
		}
	}
	return order, series
}

// writeChart renders a line chart of distance to goal per tick as a
// standalone HTML page.
func writeChart(w io.Writer, title string, history []simulation.Snapshot) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "distance to goal per tick",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	ticks := make([]string, 0, len(history))
	for _, snap := range history {
		ticks = append(ticks, fmt.Sprintf("%d", snap.Tick))
	}
	line = line.SetXAxis(ticks)

	order, series := distanceSeries(history)
	for _, id := range order {
		items := make([]opts.LineData, 0, len(series[id]))
		for _, d := range series[id] {
			items = append(items, opts.LineData{Value: d})
		}
		line.AddSeries(id, items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}
