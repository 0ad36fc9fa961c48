package maze

import "fmt"

// Layout symbols
const (
	WallSymbol  = '%'
	FoodSymbol  = '.'
	PieSymbol   = 'O'
	StartSymbol = 'P'
	FloorSymbol = ' '

	// VanishedSymbol marks a wall cell that is currently passable in rendered frames.
	VanishedSymbol = '~'

	MinGridSize = 3
	MaxGridSize = 200
)

// Position represents a (row, col) cell coordinate
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Add returns p translated by d
func (p Position) Add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

// Less orders positions row-major
func (p Position) Less(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
