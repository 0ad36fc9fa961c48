package search

import "github.com/wricardo/mcp-training/pacmanplanner/game/maze"

// Successor is one legal transition out of a state
type Successor struct {
	Action Action
	State  State
	Cost   int
}

// Successors returns the legal transitions of s in North, South, East, West
// order. Moves that would leave Pacman inside a wall when the phase expires
// are dead ends and are omitted. A goal state only offers Stop.
func Successors(g *maze.Grid, s State) []Successor {
	if s.IsGoal() {
		return []Successor{{Action: Stop, State: s, Cost: 0}}
	}

	out := make([]Successor, 0, len(Directions))
	for _, a := range Directions {
		if next, ok := Step(g, s, a); ok {
			out = append(out, Successor{Action: a, State: next, Cost: 1})
		}
	}
	return out
}

// Step applies a single action to s. It reports false when the move is out
// of bounds, blocked by a wall, ends in a dead end, or is a Stop while food
// remains.
func Step(g *maze.Grid, s State, a Action) (State, bool) {
	if a == Stop {
		return s, s.IsGoal()
	}

	delta := a.Delta()
	if delta == (maze.Position{}) {
		return State{}, false
	}

	target := s.Position.Add(delta)
	if !g.InBounds(target) {
		return State{}, false
	}
	if g.IsWall(target) && !s.Vanished.Has(target) && s.Phase == 0 {
		return State{}, false
	}

	next := State{
		Position: target,
		Food:     s.Food.Without(target),
		Pies:     s.Pies,
		Phase:    s.Phase,
		Vanished: s.Vanished,
	}

	if s.Pies.Has(target) {
		next.Pies = s.Pies.Without(target)
		next.Phase = PhaseDuration
	} else if next.Phase > 0 {
		next.Phase--
		if next.Phase == 0 {
			next.Vanished = CellSet{}
		}
	}

	if next.Phase > 0 && g.IsWall(target) {
		next.Vanished = next.Vanished.With(target)
	}

	if to, ok := g.Teleport(target); ok {
		next.Position = to
	}

	// Phase expired with Pacman inside a wall.
	if next.Phase == 0 && g.IsWall(next.Position) {
		return State{}, false
	}
	return next, true
}
