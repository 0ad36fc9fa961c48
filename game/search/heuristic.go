package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Heuristic names accepted by HeuristicByName
const (
	HeuristicMFD  = "mfd"
	HeuristicMST  = "mst"
	HeuristicNull = "null"
)

// Heuristic estimates the remaining cost from s. Implementations must never
// overestimate and must return 0 exactly for goal states.
type Heuristic func(g *maze.Grid, s State) int

// HeuristicByName returns the heuristic registered under name
func HeuristicByName(name string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case HeuristicMFD, "min_food_distance":
		return MinFoodDistance, nil
	case HeuristicMST, "minimum_spanning_tree":
		return MinSpanningTree, nil
	case HeuristicNull, "none":
		return NullHeuristic, nil
	}
	return nil, fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownHeuristic, name, HeuristicMFD, HeuristicMST)
}

// stepWeight is the lower bound on the steps between two distinct search
// nodes. Every food item is eaten on a separate step, so two nodes are never
// less than one step apart even when a teleport makes the distance 0.
func stepWeight(g *maze.Grid, a, b maze.Position) int {
	return max(1, g.Distance(a, b))
}

// NullHeuristic always returns 0, which turns A* into uniform-cost search
func NullHeuristic(*maze.Grid, State) int { return 0 }

// MinFoodDistance returns the distance from Pacman to the closest remaining food
func MinFoodDistance(g *maze.Grid, s State) int {
	if s.Food.Empty() {
		return 0
	}
	best := -1
	for _, f := range s.Food.cells {
		if d := stepWeight(g, s.Position, f); best == -1 || d < best {
			best = d
		}
	}
	return best
}

// MinSpanningTree returns the weight of a minimum spanning tree over Pacman
// and all remaining food, built with Kruskal's algorithm on the complete
// graph. It is recomputed from scratch for every state.
func MinSpanningTree(g *maze.Grid, s State) int {
	if s.Food.Empty() {
		return 0
	}

	nodes := make([]maze.Position, 0, s.Food.Len()+1)
	nodes = append(nodes, s.Position)
	nodes = append(nodes, s.Food.cells...)

	complete := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := range nodes {
		complete.AddNode(simple.Node(i))
	}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			w := float64(stepWeight(g, nodes[i], nodes[j]))
			complete.SetWeightedEdge(complete.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
		}
	}

	tree := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	return int(path.Kruskal(tree, complete))
}
