// Package config provides the layout catalogue for the Pacman planner.
//
// The config package handles:
//   - Loading layouts from .lay and .txt files
//   - Layout validation through the maze parser
//   - Default layout selection
//   - Layout discovery and listing
//   - The optional layouts.yaml index
//
// Layout Format:
//
// A layout is plain text, one line per grid row:
//   - '%' wall
//   - '.' food
//   - 'O' magical pie
//   - 'P' Pacman's start cell (exactly one)
//   - ' ' open floor
//
// Usage:
//
//	manager, err := config.NewManager("layouts")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	grid, err := manager.LoadLayout("tinySearch")
//	name, grid := manager.GetDefault()
//	layouts, err := manager.ListLayouts()
//
// Parsed grids are immutable and cached by name, so every caller shares one
// *maze.Grid per layout.
package config
