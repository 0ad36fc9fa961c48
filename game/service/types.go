package service

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRunNotSolved   = errors.New("run has no solution to replay")
)

// LayoutInfo describes a layout available in the catalogue
type LayoutInfo struct {
	Filename    string `json:"filename"`
	LayoutID    string `json:"layout_id"` // identifier to pass to solve
	Description string `json:"description,omitempty"`
	Heuristic   string `json:"heuristic,omitempty"` // preferred heuristic from the index
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Food        int    `json:"food"`
	Pies        int    `json:"pies"`
	Teleports   int    `json:"teleports"`
}

// LayoutDetail is a layout together with its rows
type LayoutDetail struct {
	LayoutInfo
	Start   maze.Position    `json:"start"`
	Corners [4]maze.Position `json:"corners"`
	Rows    []string         `json:"rows"`
}

// SolveRequest selects a layout (by catalogue name or inline text) and how to search it
type SolveRequest struct {
	Layout        string `json:"layout,omitempty"`
	LayoutText    string `json:"layout_text,omitempty"`
	Heuristic     string `json:"heuristic,omitempty"`
	MaxExpansions int    `json:"max_expansions,omitempty"`
}

// RunInfo is the public view of a solve run
type RunInfo struct {
	ID             string          `json:"id"`
	LayoutID       string          `json:"layout_id"`
	Heuristic      string          `json:"heuristic"`
	MaxExpansions  int             `json:"max_expansions,omitempty"`
	Status         search.Status   `json:"status"`
	Cost           int             `json:"cost"`
	Actions        []search.Action `json:"actions"`
	Expanded       int             `json:"expanded"`
	Generated      int             `json:"generated"`
	MaxFrontier    int             `json:"max_frontier"`
	ElapsedMillis  int64           `json:"elapsed_ms"`
	Cached         bool            `json:"cached"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
}

// Frame is one replayed state of a solution
type Frame struct {
	Step     int             `json:"step"`
	Action   search.Action   `json:"action,omitempty"`
	Position maze.Position   `json:"position"`
	Phase    int             `json:"phase"`
	FoodLeft int             `json:"food_left"`
	PiesLeft int             `json:"pies_left"`
	Vanished []maze.Position `json:"vanished"`
	Board    []string        `json:"board"`
}

// ReplayResponse holds every frame of a solved run, starting at the initial state
type ReplayResponse struct {
	RunID    string  `json:"run_id"`
	LayoutID string  `json:"layout_id"`
	Cost     int     `json:"cost"`
	Frames   []Frame `json:"frames"`
}
