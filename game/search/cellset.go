package search

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

// CellSet is an immutable, canonically ordered set of cells. With and
// Without return new sets and never modify the receiver, so sets can be
// shared freely between states.
type CellSet struct {
	cells []maze.Position
}

// NewCellSet builds a set from ps, dropping duplicates
func NewCellSet(ps ...maze.Position) CellSet {
	if len(ps) == 0 {
		return CellSet{}
	}
	cells := append([]maze.Position(nil), ps...)
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	out := cells[:1]
	for _, c := range cells[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return CellSet{cells: out}
}

// Len returns the number of cells
func (s CellSet) Len() int { return len(s.cells) }

// Empty reports whether the set has no cells
func (s CellSet) Empty() bool { return len(s.cells) == 0 }

func (s CellSet) search(p maze.Position) int {
	return sort.Search(len(s.cells), func(i int) bool { return !s.cells[i].Less(p) })
}

// Has reports whether p is in the set
func (s CellSet) Has(p maze.Position) bool {
	i := s.search(p)
	return i < len(s.cells) && s.cells[i] == p
}

// With returns a set that also contains p
func (s CellSet) With(p maze.Position) CellSet {
	i := s.search(p)
	if i < len(s.cells) && s.cells[i] == p {
		return s
	}
	cells := make([]maze.Position, 0, len(s.cells)+1)
	cells = append(cells, s.cells[:i]...)
	cells = append(cells, p)
	cells = append(cells, s.cells[i:]...)
	return CellSet{cells: cells}
}

// Without returns a set that does not contain p
func (s CellSet) Without(p maze.Position) CellSet {
	i := s.search(p)
	if i >= len(s.cells) || s.cells[i] != p {
		return s
	}
	if len(s.cells) == 1 {
		return CellSet{}
	}
	cells := make([]maze.Position, 0, len(s.cells)-1)
	cells = append(cells, s.cells[:i]...)
	cells = append(cells, s.cells[i+1:]...)
	return CellSet{cells: cells}
}

// Slice returns a copy of the cells in row-major order
func (s CellSet) Slice() []maze.Position {
	return append([]maze.Position(nil), s.cells...)
}

// Equal reports whether both sets hold the same cells
func (s CellSet) Equal(o CellSet) bool {
	if len(s.cells) != len(o.cells) {
		return false
	}
	for i := range s.cells {
		if s.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (s CellSet) appendKey(b []byte) []byte {
	b = strconv.AppendInt(b, int64(len(s.cells)), 10)
	for _, c := range s.cells {
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(c.Row), 10)
		b = append(b, ',')
		b = strconv.AppendInt(b, int64(c.Col), 10)
	}
	return b
}

func (s CellSet) MarshalJSON() ([]byte, error) {
	if s.cells == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.cells)
}

func (s *CellSet) UnmarshalJSON(data []byte) error {
	var cells []maze.Position
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	*s = NewCellSet(cells...)
	return nil
}
