package search

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

const defaultProgressEvery = 1000

// Options tunes an Engine
type Options struct {
	// MaxExpansions caps the number of expanded states; 0 means no cap.
	MaxExpansions int
	// ProgressEvery controls how often progress is logged at debug level.
	ProgressEvery int
	Logger        logrus.FieldLogger
}

// Option configures an Engine
type Option func(*Options)

// WithMaxExpansions stops the search after n expansions (0 disables the cap)
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// WithLogger sets the logger used for search progress
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithProgressEvery sets the progress logging interval
func WithProgressEvery(n int) Option {
	return func(o *Options) { o.ProgressEvery = n }
}

// node is an arena entry. parent is the index of the node this one was
// reached from, -1 for the start.
type node struct {
	state  State
	key    string
	parent int
	action Action
	g      int
}

// Engine runs A* over the Pacman state space. An Engine is not safe for
// concurrent use, but independent engines may share a Grid.
type Engine struct {
	grid      *maze.Grid
	heuristic Heuristic
	name      string
	opts      Options
}

// NewEngine creates an engine that scores states with h. name is only used
// for reporting.
func NewEngine(grid *maze.Grid, name string, h Heuristic, opts ...Option) *Engine {
	o := Options{ProgressEvery: defaultProgressEvery}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = defaultProgressEvery
	}
	return &Engine{grid: grid, heuristic: h, name: name, opts: o}
}

// Search runs A* from start until a goal state is popped, the frontier is
// exhausted, or the expansion cap is hit.
func (e *Engine) Search(start State) *Result {
	began := time.Now()
	log := e.opts.Logger.WithField("heuristic", e.name)
	log.WithFields(logrus.Fields{
		"start": start.Position.String(),
		"food":  start.Food.Len(),
		"pies":  start.Pies.Len(),
		"limit": e.opts.MaxExpansions,
	}).Info("A* search started")

	result := &Result{Heuristic: e.name}

	startKey := start.Key()
	nodes := []node{{state: start, key: startKey, parent: -1, g: 0}}
	best := map[string]int{startKey: 0}
	closed := make(map[string]int)

	open := &frontier{}
	open.push(0, e.heuristic(e.grid, start))
	result.Generated = 1
	result.MaxFrontier = 1

	finish := func(status Status) *Result {
		result.Status = status
		result.Elapsed = time.Since(began)
		fields := logrus.Fields{
			"expanded":     result.Expanded,
			"generated":    result.Generated,
			"max_frontier": result.MaxFrontier,
			"elapsed":      result.Elapsed.String(),
		}
		switch status {
		case StatusSolved:
			fields["cost"] = result.Cost
			log.WithFields(fields).Info("Solution found")
		default:
			log.WithFields(fields).Warn(fmt.Sprintf("No solution: %s", status))
		}
		return result
	}

	for open.Len() > 0 {
		item := open.pop()
		n := nodes[item.node]

		// Lazy deletion: a cheaper copy of this state was pushed later, or
		// the state was already expanded at an equal or lower cost.
		if n.g > best[n.key] {
			continue
		}
		if g, ok := closed[n.key]; ok && g <= n.g {
			continue
		}

		if n.state.IsGoal() {
			result.Actions = e.reconstruct(nodes, item.node)
			result.Cost = n.g
			return finish(StatusSolved)
		}

		if e.opts.MaxExpansions > 0 && result.Expanded >= e.opts.MaxExpansions {
			return finish(StatusLimitExceeded)
		}

		closed[n.key] = n.g
		result.Expanded++
		if result.Expanded%e.opts.ProgressEvery == 0 {
			log.WithFields(logrus.Fields{
				"expanded":  result.Expanded,
				"position":  n.state.Position.String(),
				"food_left": n.state.Food.Len(),
				"frontier":  open.Len(),
			}).Debug("Search progress")
		}

		for _, succ := range Successors(e.grid, n.state) {
			if succ.Action == Stop {
				continue
			}
			g := n.g + succ.Cost
			key := succ.State.Key()
			if prev, ok := best[key]; ok && g >= prev {
				continue
			}
			best[key] = g
			nodes = append(nodes, node{state: succ.State, key: key, parent: item.node, action: succ.Action, g: g})
			open.push(len(nodes)-1, g+e.heuristic(e.grid, succ.State))
			result.Generated++
		}
		if open.Len() > result.MaxFrontier {
			result.MaxFrontier = open.Len()
		}
	}

	return finish(StatusUnsolvable)
}

// reconstruct walks parent links from the goal back to the start
func (e *Engine) reconstruct(nodes []node, goal int) []Action {
	var actions []Action
	for i := goal; nodes[i].parent >= 0; i = nodes[i].parent {
		actions = append(actions, nodes[i].action)
	}
	for i, j := 0, len(actions)-1; i < j; i, j = i+1, j-1 {
		actions[i], actions[j] = actions[j], actions[i]
	}
	if actions == nil {
		actions = []Action{}
	}
	return actions
}
