package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/beka-birhanu/vinom-nav/game/agent"
	"github.com/beka-birhanu/vinom-nav/game/grid"
	"github.com/logrusorgru/aurora"
)

// renderer draws grids for the terminal. Agents are shown as upper-case
// letters in scenario order and their goals as the matching lower-case letter.
type renderer struct {
	au aurora.Aurora
}

func newRenderer(colors bool) *renderer {
	return &renderer{au: aurora.NewAurora(colors)}
}

func symbol(i int) rune {
	return rune('A' + i%26)
}

func (r *renderer) label(id string) string {
	return r.au.Bold(id).String()
}

func (r *renderer) cell(g *grid.Grid, p grid.Position) string {
	if !g.Passable(p) {
		return r.au.Blue("#").String()
	}
	return "."
}

func (r *renderer) agentCell(st agent.State, i int) string {
	s := string(symbol(i))
	switch st.Status {
	case agent.StatusGoalReached.String():
		return r.au.Green(s).String()
	case agent.StatusBudgetExhausted.String():
		return r.au.Red(s).String()
	default:
		return r.au.Yellow(s).String()
	}
}

// renderGrid draws obstacles, goals and agent positions. Agents cover goals
// and the earlier agent wins a shared cell.
func (r *renderer) renderGrid(w io.Writer, g *grid.Grid, states []agent.State) {
	cells := make(map[grid.Position]string, 2*len(states))
	for i, st := range states {
		cells[st.Goal] = r.au.Cyan(strings.ToLower(string(symbol(i)))).String()
	}
	for i := len(states) - 1; i >= 0; i-- {
		cells[states[i].Position] = r.agentCell(states[i], i)
	}

	var b strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := grid.Position{X: x, Y: y}
			if c, ok := cells[p]; ok {
				b.WriteString(c)
			} else {
				b.WriteString(r.cell(g, p))
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}

// renderPath draws a planned path with S and G marking its ends.
func (r *renderer) renderPath(w io.Writer, g *grid.Grid, path []grid.Position) {
	cells := make(map[grid.Position]string, len(path))
	for _, p := range path {
		cells[p] = r.au.Yellow("*").String()
	}
	if len(path) > 0 {
		cells[path[0]] = r.au.Green("S").String()
		cells[path[len(path)-1]] = r.au.Cyan("G").String()
	}

	var b strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := grid.Position{X: x, Y: y}
			if c, ok := cells[p]; ok {
				b.WriteString(c)
			} else {
				b.WriteString(r.cell(g, p))
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}
