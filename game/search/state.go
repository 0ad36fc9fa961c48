package search

import (
	"fmt"
	"strconv"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

// PhaseDuration is the number of steps a magical pie lets Pacman walk through walls
const PhaseDuration = 5

// State is one node of the search space. It is a value: transitions build
// new states and never modify an existing one.
type State struct {
	Position maze.Position `json:"position"`
	Food     CellSet       `json:"food"`
	Pies     CellSet       `json:"pies"`
	// Phase is the number of wall-passing steps left; 0 means walls block.
	Phase int `json:"phase"`
	// Vanished holds the wall cells entered during the active phase. It is
	// empty whenever Phase is 0.
	Vanished CellSet `json:"vanished"`
}

// InitialState derives the start state from the grid
func InitialState(g *maze.Grid) State {
	return State{
		Position: g.Start(),
		Food:     NewCellSet(g.Food()...),
		Pies:     NewCellSet(g.Pies()...),
	}
}

// IsGoal reports whether all food has been eaten
func (s State) IsGoal() bool {
	return s.Food.Empty()
}

// Key is a canonical encoding of all five fields. Two states are equal
// exactly when their keys are equal.
func (s State) Key() string {
	b := make([]byte, 0, 16+8*(s.Food.Len()+s.Pies.Len()+s.Vanished.Len()))
	b = strconv.AppendInt(b, int64(s.Position.Row), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(s.Position.Col), 10)
	b = append(b, '|')
	b = strconv.AppendInt(b, int64(s.Phase), 10)
	b = append(b, '|')
	b = s.Food.appendKey(b)
	b = append(b, '|')
	b = s.Pies.appendKey(b)
	b = append(b, '|')
	b = s.Vanished.appendKey(b)
	return string(b)
}

// Equal compares all five fields
func (s State) Equal(o State) bool {
	return s.Position == o.Position &&
		s.Phase == o.Phase &&
		s.Food.Equal(o.Food) &&
		s.Pies.Equal(o.Pies) &&
		s.Vanished.Equal(o.Vanished)
}

func (s State) String() string {
	return fmt.Sprintf("Position: %v, Food left: %d, Pies left: %d, Phase: %d, Vanished walls: %d",
		s.Position, s.Food.Len(), s.Pies.Len(), s.Phase, s.Vanished.Len())
}

// Overlay converts the state into the dynamic layer drawn by Grid.Render
func (s State) Overlay() maze.Overlay {
	return maze.Overlay{
		Pacman:   s.Position,
		Food:     s.Food.Slice(),
		Pies:     s.Pies.Slice(),
		Vanished: s.Vanished.Slice(),
	}
}
