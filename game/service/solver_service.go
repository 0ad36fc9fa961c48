package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
)

// SolverService defines all planner operations exposed to transports
type SolverService interface {
	// Layouts
	ListLayouts(ctx context.Context) ([]*LayoutInfo, error)
	GetLayout(ctx context.Context, name string) (*LayoutDetail, error)
	SaveLayout(ctx context.Context, name, text string) (*LayoutInfo, error)

	// Runs
	Solve(ctx context.Context, req SolveRequest) (*RunInfo, error)
	GetRun(ctx context.Context, runID string) (*RunInfo, error)
	ListRuns(ctx context.Context) ([]*RunInfo, error)
	DeleteRun(ctx context.Context, runID string) error
	Replay(ctx context.Context, runID string) (*ReplayResponse, error)
}

// RunManager defines run storage operations
type RunManager interface {
	Create(run *Run) error
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// LayoutManager handles the layout catalogue
type LayoutManager interface {
	LoadLayout(name string) (*maze.Grid, error)
	ListLayouts() ([]*LayoutInfo, error)
	GetDefault() (string, *maze.Grid)
	SaveLayout(name, text string) (*maze.Grid, error)
	Describe(name string) (description, heuristic string)
}

// Run is a completed search over one layout
type Run struct {
	ID             string
	LayoutID       string
	Grid           *maze.Grid
	Heuristic      string
	MaxExpansions  int
	Result         *search.Result
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
