package search

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

// Action is a single Pacman move
type Action string

const (
	North Action = "North"
	South Action = "South"
	East  Action = "East"
	West  Action = "West"
	// Stop closes a finished plan. It costs nothing and is never legal while food remains.
	Stop Action = "Stop"
)

// Directions lists the movement actions in expansion order
var Directions = []Action{North, South, East, West}

// Delta returns the (row, col) offset of a movement action
func (a Action) Delta() maze.Position {
	switch a {
	case North:
		return maze.Position{Row: -1}
	case South:
		return maze.Position{Row: 1}
	case East:
		return maze.Position{Col: 1}
	case West:
		return maze.Position{Col: -1}
	}
	return maze.Position{}
}

// ParseAction accepts action names case-insensitively, plus the
// up/down/left/right aliases.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n", "up":
		return North, nil
	case "south", "s", "down":
		return South, nil
	case "east", "e", "right":
		return East, nil
	case "west", "w", "left":
		return West, nil
	case "stop":
		return Stop, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// ParseActions parses every entry of names
func ParseActions(names []string) ([]Action, error) {
	actions := make([]Action, 0, len(names))
	for i, n := range names {
		a, err := ParseAction(n)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
