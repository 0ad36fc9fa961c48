// Package maze provides the immutable grid model for the Pacman planner.
//
// The maze package implements:
//   - Layout parsing ('%' wall, '.' food, 'O' magical pie, 'P' start, ' ' floor)
//   - The Grid value: wall mask, initial food and pies, start cell, corners
//   - Corner teleport pairs and the teleport-aware distance lower bound
//   - Random layout generation with guaranteed connectivity
//   - Text rendering of frames for terminal replay
//
// Usage:
//
//	grid, err := maze.LoadLayoutFile("layouts/tinySearch.lay")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(grid.Width(), grid.Height(), len(grid.Food()))
//
// A Grid is read-only after construction and safe to share between
// goroutines.
package maze
