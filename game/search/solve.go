package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

// Solve plans a full action sequence that eats every food item on grid,
// using the heuristic registered under heuristicName. Unsolvable mazes and
// an exceeded expansion cap are reported through Result.Status; the error
// is only set for invalid arguments.
func Solve(grid *maze.Grid, heuristicName string, opts ...Option) (*Result, error) {
	if grid == nil {
		return nil, errors.New("grid cannot be nil")
	}
	h, err := HeuristicByName(heuristicName)
	if err != nil {
		return nil, err
	}
	engine := NewEngine(grid, strings.ToLower(strings.TrimSpace(heuristicName)), h, opts...)
	return engine.Search(InitialState(grid)), nil
}

// Replay re-simulates actions from the grid's initial state and returns every
// intermediate state, starting with the initial one.
func Replay(grid *maze.Grid, actions []Action) ([]State, error) {
	return ReplayFrom(grid, InitialState(grid), actions)
}

// ReplayFrom re-simulates actions from an arbitrary state
func ReplayFrom(grid *maze.Grid, start State, actions []Action) ([]State, error) {
	states := make([]State, 0, len(actions)+1)
	states = append(states, start)
	current := start
	for i, a := range actions {
		next, ok := Step(grid, current, a)
		if !ok {
			return states, fmt.Errorf("%w: step %d %s from %v", ErrIllegalAction, i+1, a, current.Position)
		}
		states = append(states, next)
		current = next
	}
	return states, nil
}

// PlanCost sums the step costs of actions (Stop is free)
func PlanCost(actions []Action) int {
	cost := 0
	for _, a := range actions {
		if a != Stop {
			cost++
		}
	}
	return cost
}
