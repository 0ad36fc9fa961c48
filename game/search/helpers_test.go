package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
)

// corridorLayout has food at both ends of a corridor and no active teleports
var corridorLayout = []string{
	"%%%%%%%%%%%",
	"%%%%% %%%%%",
	"%.  P    .%",
	"%%%%% %%%%%",
	"%%%%%%%%%%%",
}

// phaseLayout has one food item sealed behind a wall; the pie is the only way in
var phaseLayout = []string{
	"%%%%%%%%",
	"%P   %%%",
	"%  O%.%%",
	"%    %%%",
	"%%%%%%%%",
}

// teleportLayout is a 2x3 room where all four corners teleport
var teleportLayout = []string{
	"%%%%%",
	"%P  %",
	"%  .%",
	"%%%%%",
}

var mixedLayout = []string{
	"%%%%%%%",
	"%P  %.%",
	"% %O%%%",
	"%.   .%",
	"%%%%%%%",
}

func mustGrid(t *testing.T, rows []string) *maze.Grid {
	t.Helper()
	g, err := maze.ParseLayout(strings.Join(rows, "\n"))
	require.NoError(t, err)
	return g
}

func pos(r, c int) maze.Position {
	return maze.Position{Row: r, Col: c}
}

// stateGraph is the fully explored reachable state space of a small maze
type stateGraph struct {
	states map[string]State
	edges  map[string][]string
	start  string
	// depth is the breadth-first distance from the start
	depth map[string]int
}

func exploreStates(t *testing.T, g *maze.Grid, limit int) *stateGraph {
	t.Helper()
	start := InitialState(g)
	sg := &stateGraph{
		states: map[string]State{start.Key(): start},
		edges:  map[string][]string{},
		start:  start.Key(),
		depth:  map[string]int{start.Key(): 0},
	}
	queue := []string{start.Key()}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		for _, succ := range Successors(g, sg.states[key]) {
			if succ.Action == Stop {
				continue
			}
			next := succ.State.Key()
			sg.edges[key] = append(sg.edges[key], next)
			if _, seen := sg.states[next]; seen {
				continue
			}
			sg.states[next] = succ.State
			sg.depth[next] = sg.depth[key] + 1
			queue = append(queue, next)
			require.Less(t, len(sg.states), limit, "state space too large for exhaustive search")
		}
	}
	return sg
}

// optimalCost returns the breadth-first cost of the cheapest goal, -1 when
// no goal is reachable
func (sg *stateGraph) optimalCost() int {
	best := -1
	for key, s := range sg.states {
		if s.IsGoal() && (best == -1 || sg.depth[key] < best) {
			best = sg.depth[key]
		}
	}
	return best
}

// costToGoal computes the exact remaining cost of every state that can reach a goal
func (sg *stateGraph) costToGoal() map[string]int {
	reverse := map[string][]string{}
	for from, tos := range sg.edges {
		for _, to := range tos {
			reverse[to] = append(reverse[to], from)
		}
	}
	dist := map[string]int{}
	var queue []string
	for key, s := range sg.states {
		if s.IsGoal() {
			dist[key] = 0
			queue = append(queue, key)
		}
	}
	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		for _, prev := range reverse[key] {
			if _, ok := dist[prev]; ok {
				continue
			}
			dist[prev] = dist[key] + 1
			queue = append(queue, prev)
		}
	}
	return dist
}
