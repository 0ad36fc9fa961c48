// Package search implements the Pacman planner's state space and A* search.
//
// A State holds Pacman's cell, the remaining food and pies, the wall-phase
// countdown and the walls vanished during the current phase. Successors
// applies the movement rules:
//   - walls block unless a phase is active
//   - eating a pie starts a PhaseDuration-step phase
//   - entering an active corner teleports to the opposite corner
//   - a phase that ends with Pacman inside a wall is a dead end
//
// Two admissible heuristics are provided, "mfd" (closest food) and "mst"
// (minimum spanning tree over Pacman and the remaining food). Both measure
// distance with maze.Grid.Distance, which accounts for teleports.
//
// Usage:
//
//	result, err := search.Solve(grid, search.HeuristicMST, search.WithMaxExpansions(1_000_000))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.Solved() {
//		log.Fatal(result.Err())
//	}
//	states, err := search.Replay(grid, result.Actions)
//
// Search is single threaded and deterministic: equal priorities are served
// in insertion order, so the same grid and heuristic always produce the same
// plan.
package search
