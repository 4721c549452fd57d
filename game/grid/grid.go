/*
Package grid provides the static occupancy map shared by every agent of a simulation.

A Grid is immutable after construction. It answers bounds, passability,
neighbor and cost queries for any position, including positions outside the grid.
*/
package grid

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidDimensions is returned when a grid is built with a non-positive width or height.
var ErrInvalidDimensions = errors.New("invalid grid dimensions")

// Position is a cell coordinate on the grid.
type Position struct {
	X int `json:"x" yaml:"x" bson:"x"`
	Y int `json:"y" yaml:"y" bson:"y"`
}

// String renders the position as (x,y).
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns the sum of absolute coordinate differences between a and b.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// directions lists the axis-aligned offsets in neighbor order: +x, -x, +y, -y.
var directions = [4]Position{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

// Direction returns the offset for an action index, wrapping indexes outside [0, 4).
func Direction(action int) Position {
	return directions[((action%len(directions))+len(directions))%len(directions)]
}

// Translate returns p moved by the given offset.
func (p Position) Translate(offset Position) Position {
	return Position{X: p.X + offset.X, Y: p.Y + offset.Y}
}

// Grid is a rectangular occupancy map.
type Grid struct {
	width     int                   // Number of columns
	height    int                   // Number of rows
	obstacles map[Position]struct{} // Blocked cells, possibly out of bounds
}

// New creates a grid of the given dimensions.
// Obstacles are not bounds-checked; only in-bounds obstacles affect queries.
func New(width, height int, obstacles []Position) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d", ErrInvalidDimensions, width, height)
	}

	blocked := make(map[Position]struct{}, len(obstacles))
	for _, o := range obstacles {
		blocked[o] = struct{}{}
	}

	return &Grid{
		width:     width,
		height:    height,
		obstacles: blocked,
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Passable reports whether p is not an obstacle. It does not check bounds.
func (g *Grid) Passable(p Position) bool {
	_, blocked := g.obstacles[p]
	return !blocked
}

// Neighbors returns the in-bounds, passable cells adjacent to p in +x, -x, +y, -y order.
// The order is significant: agents map action indexes onto it.
func (g *Grid) Neighbors(p Position) []Position {
	result := make([]Position, 0, len(directions))
	for _, d := range directions {
		next := p.Translate(d)
		if g.InBounds(next) && g.Passable(next) {
			result = append(result, next)
		}
	}
	return result
}

// Cost returns the cost of moving between two adjacent cells.
func (g *Grid) Cost(_, _ Position) int {
	return 1
}

// Obstacles returns a sorted copy of the obstacle set.
func (g *Grid) Obstacles() []Position {
	result := make([]Position, 0, len(g.obstacles))
	for o := range g.obstacles {
		result = append(result, o)
	}
	slices.SortFunc(result, func(a, b Position) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return result
}

// String provides a textual representation of the grid, one row per line.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.Passable(Position{X: x, Y: y}) {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
