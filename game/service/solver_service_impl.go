package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
)

// DefaultMemoSize is the number of search results kept for reuse
const DefaultMemoSize = 128

// DefaultMaxExpansions caps searches whose request leaves max_expansions unset
const DefaultMaxExpansions = 2_000_000

// InlineLayoutID is the layout ID recorded for runs over layout text sent with the request
const InlineLayoutID = "inline"

// memoKey identifies a search by the layout contents, not its name, so a
// re-saved layout never serves a stale plan.
type memoKey struct {
	layout    string
	heuristic string
	limit     int
}

// solverServiceImpl implements the SolverService interface
type solverServiceImpl struct {
	runs    RunManager
	layouts LayoutManager
	memo    *lru.Cache[memoKey, *search.Result]
	log     logrus.FieldLogger

	defaultMaxExpansions int
}

// Option configures a solver service
type Option func(*solverServiceImpl)

// WithDefaultMaxExpansions sets the cap applied when a request omits
// max_expansions. Zero leaves such searches unbounded.
func WithDefaultMaxExpansions(n int) Option {
	return func(s *solverServiceImpl) {
		if n >= 0 {
			s.defaultMaxExpansions = n
		}
	}
}

// NewSolverService creates a new solver service. A nil logger discards
// output; memoSize <= 0 uses DefaultMemoSize. Requests without a cap get
// DefaultMaxExpansions unless WithDefaultMaxExpansions says otherwise.
func NewSolverService(runs RunManager, layouts LayoutManager, logger logrus.FieldLogger, memoSize int, opts ...Option) (SolverService, error) {
	if memoSize <= 0 {
		memoSize = DefaultMemoSize
	}
	memo, err := lru.New[memoKey, *search.Result](memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	s := &solverServiceImpl{
		runs:                 runs,
		layouts:              layouts,
		memo:                 memo,
		log:                  logger,
		defaultMaxExpansions: DefaultMaxExpansions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListLayouts returns the layout catalogue sorted by ID
func (s *solverServiceImpl) ListLayouts(ctx context.Context) ([]*LayoutInfo, error) {
	layouts, err := s.layouts.ListLayouts()
	if err != nil {
		return nil, err
	}
	sort.Slice(layouts, func(i, j int) bool { return layouts[i].LayoutID < layouts[j].LayoutID })
	return layouts, nil
}

// GetLayout returns a catalogue layout with its rows
func (s *solverServiceImpl) GetLayout(ctx context.Context, name string) (*LayoutDetail, error) {
	g, err := s.layouts.LoadLayout(name)
	if err != nil {
		return nil, s.layoutError(name, err)
	}
	return s.detail(name, g), nil
}

// SaveLayout validates and stores layout text under name
func (s *solverServiceImpl) SaveLayout(ctx context.Context, name, text string) (*LayoutInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: invalid layout name %q", ErrInvalidRequest, name)
	}
	g, err := s.layouts.SaveLayout(name, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	s.log.WithField("layout", name).Info("Layout saved")
	info := s.detail(name, g).LayoutInfo
	return &info, nil
}

// Solve runs A* over the requested layout and records the outcome as a run.
// Unsolvable layouts and exceeded expansion caps are successful calls whose
// run carries the corresponding status.
func (s *solverServiceImpl) Solve(ctx context.Context, req SolveRequest) (*RunInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.MaxExpansions < 0 {
		return nil, fmt.Errorf("%w: max_expansions must not be negative", ErrInvalidRequest)
	}

	limit := req.MaxExpansions
	if limit == 0 {
		limit = s.defaultMaxExpansions
	}

	layoutID, grid, err := s.resolveLayout(req)
	if err != nil {
		return nil, err
	}

	heuristic := strings.ToLower(strings.TrimSpace(req.Heuristic))
	if heuristic == "" {
		_, heuristic = s.layouts.Describe(layoutID)
	}
	if heuristic == "" {
		heuristic = search.HeuristicMST
	}
	if _, err := search.HeuristicByName(heuristic); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	log := s.log.WithFields(logrus.Fields{"layout": layoutID, "heuristic": heuristic})

	key := memoKey{layout: grid.String(), heuristic: heuristic, limit: limit}
	result, cached := s.memo.Get(key)
	if cached {
		log.Debug("Reusing memoised search result")
		// The timing belongs to the search that filled the cache
		reused := *result
		reused.Elapsed = 0
		result = &reused
	} else {
		result, err = search.Solve(grid, heuristic,
			search.WithMaxExpansions(limit),
			search.WithLogger(log),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		s.memo.Add(key, result)
	}

	now := time.Now()
	run := &Run{
		ID:             uuid.NewString(),
		LayoutID:       layoutID,
		Grid:           grid,
		Heuristic:      heuristic,
		MaxExpansions:  limit,
		Result:         result,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := s.runs.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	info := toRunInfo(run)
	info.Cached = cached
	return info, nil
}

// GetRun retrieves a run
func (s *solverServiceImpl) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("%w: run %s: %w", ErrNotFound, runID, err)
	}
	s.runs.UpdateLastAccessed(runID)
	return toRunInfo(run), nil
}

// ListRuns returns all runs, newest first
func (s *solverServiceImpl) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	runs := s.runs.List()
	result := make([]*RunInfo, 0, len(runs))
	for _, run := range runs {
		result = append(result, toRunInfo(run))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// DeleteRun removes a run
func (s *solverServiceImpl) DeleteRun(ctx context.Context, runID string) error {
	if err := s.runs.Delete(runID); err != nil {
		return fmt.Errorf("%w: run %s: %w", ErrNotFound, runID, err)
	}
	return nil
}

// Replay re-simulates a solved run and renders every intermediate state
func (s *solverServiceImpl) Replay(ctx context.Context, runID string) (*ReplayResponse, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("%w: run %s: %w", ErrNotFound, runID, err)
	}
	if !run.Result.Solved() {
		return nil, fmt.Errorf("%w: run %s is %s", ErrRunNotSolved, runID, run.Result.Status)
	}
	s.runs.UpdateLastAccessed(runID)

	frames, err := BuildFrames(run.Grid, run.Result.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to replay run %s: %w", runID, err)
	}
	return &ReplayResponse{
		RunID:    run.ID,
		LayoutID: run.LayoutID,
		Cost:     run.Result.Cost,
		Frames:   frames,
	}, nil
}

// BuildFrames replays actions on grid and renders one frame per state
func BuildFrames(grid *maze.Grid, actions []search.Action) ([]Frame, error) {
	states, err := search.Replay(grid, actions)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, len(states))
	for i, st := range states {
		f := Frame{
			Step:     i,
			Position: st.Position,
			Phase:    st.Phase,
			FoodLeft: st.Food.Len(),
			PiesLeft: st.Pies.Len(),
			Vanished: st.Vanished.Slice(),
			Board:    grid.Render(st.Overlay()),
		}
		if f.Vanished == nil {
			f.Vanished = []maze.Position{}
		}
		if i > 0 {
			f.Action = actions[i-1]
		}
		frames[i] = f
	}
	return frames, nil
}

// resolveLayout picks inline text, a named layout, or the catalogue default
func (s *solverServiceImpl) resolveLayout(req SolveRequest) (string, *maze.Grid, error) {
	if strings.TrimSpace(req.LayoutText) != "" {
		g, err := maze.ParseLayout(req.LayoutText)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return InlineLayoutID, g, nil
	}
	if req.Layout == "" {
		name, g := s.layouts.GetDefault()
		return name, g, nil
	}
	g, err := s.layouts.LoadLayout(req.Layout)
	if err != nil {
		return "", nil, s.layoutError(req.Layout, err)
	}
	return req.Layout, g, nil
}

// layoutError adds the available layout IDs to a lookup failure
func (s *solverServiceImpl) layoutError(name string, err error) error {
	available, listErr := s.layouts.ListLayouts()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("%w: layout '%s': %w", ErrNotFound, name, err)
	}
	ids := make([]string, 0, len(available))
	for _, l := range available {
		ids = append(ids, l.LayoutID)
	}
	sort.Strings(ids)
	return fmt.Errorf("%w: layout '%s' (available: %s): %w", ErrNotFound, name, strings.Join(ids, ", "), err)
}

func (s *solverServiceImpl) detail(name string, g *maze.Grid) *LayoutDetail {
	description, heuristic := s.layouts.Describe(name)
	return &LayoutDetail{
		LayoutInfo: DescribeGrid(name, g, description, heuristic),
		Start:      g.Start(),
		Corners:    g.Corners(),
		Rows:       strings.Split(g.String(), "\n"),
	}
}

// DescribeGrid summarises a parsed layout
func DescribeGrid(name string, g *maze.Grid, description, heuristic string) LayoutInfo {
	return LayoutInfo{
		LayoutID:    name,
		Description: description,
		Heuristic:   heuristic,
		Width:       g.Width(),
		Height:      g.Height(),
		Food:        len(g.Food()),
		Pies:        len(g.Pies()),
		Teleports:   g.TeleportPairs(),
	}
}

func toRunInfo(run *Run) *RunInfo {
	info := &RunInfo{
		ID:             run.ID,
		LayoutID:       run.LayoutID,
		Heuristic:      run.Heuristic,
		MaxExpansions:  run.MaxExpansions,
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
		Actions:        []search.Action{},
	}
	if r := run.Result; r != nil {
		info.Status = r.Status
		info.Cost = r.Cost
		info.Expanded = r.Expanded
		info.Generated = r.Generated
		info.MaxFrontier = r.MaxFrontier
		info.ElapsedMillis = r.Elapsed.Milliseconds()
		if r.Actions != nil {
			info.Actions = r.Actions
		}
	}
	return info
}
