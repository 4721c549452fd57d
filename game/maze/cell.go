package maze

// Cell is one maze room with a wall on each side.
type Cell struct {
	NorthWall bool
	SouthWall bool
	EastWall  bool
	WestWall  bool
}

// CellPosition is the row/column of a maze cell.
type CellPosition struct {
	Row int
	Col int
}

// Move connects two adjacent cells in a named direction.
type Move struct {
	From      CellPosition
	To        CellPosition
	Direction string
}

// direction is a named offset between adjacent cells.
type direction struct {
	name  string
	delta CellPosition
}

// directions are kept in a fixed order so a seeded generator is reproducible.
var directions = []direction{
	{name: "North", delta: CellPosition{Row: -1, Col: 0}},
	{name: "South", delta: CellPosition{Row: 1, Col: 0}},
	{name: "East", delta: CellPosition{Row: 0, Col: 1}},
	{name: "West", delta: CellPosition{Row: 0, Col: -1}},
}
