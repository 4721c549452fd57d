/*
Package maze generates perfect mazes with Wilson's algorithm and rasterizes them
into occupancy grids.

A maze of w×h cells becomes a (2w+1)×(2h+1) grid: cell (row, col) sits at grid
position (2·col+1, 2·row+1), walls and pillars are obstacles, and an open wall
frees the grid cell between two rooms. Every pair of rooms is connected by
exactly one corridor.
*/
package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-nav/game/grid"
)

const (
	maxMazeDimension = 64
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
)

// WillsonMaze is a rectangular maze of cells with walls.
type WillsonMaze struct {
	Width  int       // number of columns
	Height int       // number of rows
	Cells  [][]*Cell // Cells[row][col]
	rng    *rand.Rand
}

// New generates a maze of the given dimensions. A nil rng uses a time-seeded source.
func New(width, height int, rng *rand.Rand) (*WillsonMaze, error) {
	if min(width, height) <= 0 || max(width, height) > maxMazeDimension {
		return nil, fmt.Errorf("%w: %dx%d (each side must be in 1..%d)", ErrInvalidDimensions, width, height, maxMazeDimension)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cells := make([][]*Cell, height)
	for i := range cells {
		cells[i] = make([]*Cell, width)
		for j := range cells[i] {
			cells[i][j] = &Cell{NorthWall: true, SouthWall: true, EastWall: true, WestWall: true}
		}
	}

	m := &WillsonMaze{
		Width:  width,
		Height: height,
		Cells:  cells,
		rng:    rng,
	}
	m.generateMaze()
	return m, nil
}

func (m *WillsonMaze) inBounds(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.Height && pos.Col >= 0 && pos.Col < m.Width
}

func (m *WillsonMaze) randomCellPosition() CellPosition {
	return CellPosition{Row: m.rng.Intn(m.Height), Col: m.rng.Intn(m.Width)}
}

// randomUnvisitedCellPosition picks a cell outside the tree. At least one must exist.
func (m *WillsonMaze) randomUnvisitedCellPosition(visited map[CellPosition]struct{}) CellPosition {
	for {
		pos := m.randomCellPosition()
		if _, included := visited[pos]; !included {
			return pos
		}
	}
}

// neighbors lists the moves from pos that stay inside the maze.
func (m *WillsonMaze) neighbors(pos CellPosition) []Move {
	var result []Move
	for _, dir := range directions {
		to := CellPosition{Row: pos.Row + dir.delta.Row, Col: pos.Col + dir.delta.Col}
		if m.inBounds(to) {
			result = append(result, Move{From: pos, To: to, Direction: dir.name})
		}
	}
	return result
}

// openWall removes the wall between the two cells of move.
func (m *WillsonMaze) openWall(move Move) {
	from, to := m.Cells[move.From.Row][move.From.Col], m.Cells[move.To.Row][move.To.Col]
	switch move.Direction {
	case "North":
		from.NorthWall, to.SouthWall = false, false
	case "South":
		from.SouthWall, to.NorthWall = false, false
	case "East":
		from.EastWall, to.WestWall = false, false
	case "West":
		from.WestWall, to.EastWall = false, false
	}
}

// randomWalk wanders from an unvisited cell until it hits the tree. Each cell
// keeps only its last exit, which erases loops. It returns the start cell and
// the exits.
func (m *WillsonMaze) randomWalk(visited map[CellPosition]struct{}) (CellPosition, map[CellPosition]Move) {
	start := m.randomUnvisitedCellPosition(visited)
	exits := make(map[CellPosition]Move)
	cell := start

	for {
		neighbors := m.neighbors(cell)
		next := neighbors[m.rng.Intn(len(neighbors))]
		exits[cell] = next
		if _, included := visited[next.To]; included {
			break
		}
		cell = next.To
	}

	return start, exits
}

// generateMaze grows a uniform spanning tree with Wilson's algorithm.
func (m *WillsonMaze) generateMaze() {
	visited := map[CellPosition]struct{}{m.randomCellPosition(): {}}

	for len(visited) < m.Width*m.Height {
		start, exits := m.randomWalk(visited)
		for cell := start; ; {
			if _, included := visited[cell]; included {
				break
			}
			move := exits[cell]
			m.openWall(move)
			visited[cell] = struct{}{}
			cell = move.To
		}
	}
}

// IsValidMove reports whether move joins two adjacent in-bounds cells with no wall between them.
func (m *WillsonMaze) IsValidMove(move Move) bool {
	if !m.inBounds(move.From) || !m.inBounds(move.To) {
		return false
	}

	from, to := m.Cells[move.From.Row][move.From.Col], m.Cells[move.To.Row][move.To.Col]
	switch move.Direction {
	case "North":
		return move.To.Row == move.From.Row-1 && move.To.Col == move.From.Col && !from.NorthWall && !to.SouthWall
	case "South":
		return move.To.Row == move.From.Row+1 && move.To.Col == move.From.Col && !from.SouthWall && !to.NorthWall
	case "East":
		return move.To.Col == move.From.Col+1 && move.To.Row == move.From.Row && !from.EastWall && !to.WestWall
	case "West":
		return move.To.Col == move.From.Col-1 && move.To.Row == move.From.Row && !from.WestWall && !to.EastWall
	default:
		return false
	}
}

// CellCenter returns the grid position of a cell in the rasterized layout.
func CellCenter(pos CellPosition) grid.Position {
	return grid.Position{X: 2*pos.Col + 1, Y: 2*pos.Row + 1}
}

// GridSize returns the dimensions of the rasterized layout.
func (m *WillsonMaze) GridSize() (width, height int) {
	return 2*m.Width + 1, 2*m.Height + 1
}

// Obstacles returns the wall and pillar cells of the rasterized layout, row by row.
func (m *WillsonMaze) Obstacles() []grid.Position {
	width, height := m.GridSize()
	free := make(map[grid.Position]struct{}, m.Width*m.Height*2)
	for row := 0; row < m.Height; row++ {
		for col := 0; col < m.Width; col++ {
			center := CellCenter(CellPosition{Row: row, Col: col})
			free[center] = struct{}{}
			cell := m.Cells[row][col]
			if !cell.EastWall {
				free[grid.Position{X: center.X + 1, Y: center.Y}] = struct{}{}
			}
			if !cell.SouthWall {
				free[grid.Position{X: center.X, Y: center.Y + 1}] = struct{}{}
			}
		}
	}

	obstacles := make([]grid.Position, 0, width*height-len(free))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := grid.Position{X: x, Y: y}
			if _, ok := free[p]; !ok {
				obstacles = append(obstacles, p)
			}
		}
	}
	return obstacles
}

// Grid rasterizes the maze into an occupancy grid.
func (m *WillsonMaze) Grid() (*grid.Grid, error) {
	width, height := m.GridSize()
	return grid.New(width, height, m.Obstacles())
}

// String draws the maze with ASCII walls.
func (m *WillsonMaze) String() string {
	var b strings.Builder

	b.WriteString("+" + strings.Repeat("---+", m.Width) + "\n")
	for row := 0; row < m.Height; row++ {
		b.WriteString("|")
		for col := 0; col < m.Width; col++ {
			b.WriteString("   ")
			if m.Cells[row][col].EastWall {
				b.WriteString("|")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n+")
		for col := 0; col < m.Width; col++ {
			if m.Cells[row][col].SouthWall {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
