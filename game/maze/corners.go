package maze

import "math"

// buildCorners finds the four extreme corners of the open area and the
// active teleport pairs between diagonally opposite corners. A pair is active
// only when both cells are open and distinct.
func (g *Grid) buildCorners() {
	minR, minC := math.MaxInt, math.MaxInt
	maxR, maxC := -1, -1
	for r := 0; r < g.height; r++ {
		for c := 0; c < g.width; c++ {
			if g.walls.Has(Position{Row: r, Col: c}) {
				continue
			}
			minR, maxR = min(minR, r), max(maxR, r)
			minC, maxC = min(minC, c), max(maxC, c)
		}
	}

	g.corners = [4]Position{
		{Row: minR, Col: minC}, // top-left
		{Row: maxR, Col: minC}, // bottom-left
		{Row: minR, Col: maxC}, // top-right
		{Row: maxR, Col: maxC}, // bottom-right
	}

	g.teleport = make(map[Position]Position)
	for i, from := range g.corners {
		to := g.corners[3-i]
		if from == to || g.walls.Has(from) || g.walls.Has(to) {
			continue
		}
		g.teleport[from] = to
	}

	for _, c := range g.corners {
		if _, ok := g.teleport[c]; ok && !containsPosition(g.portals, c) {
			g.portals = append(g.portals, c)
		}
	}
	g.buildPortalDistances()
}

// buildPortalDistances runs Floyd-Warshall over the active corners, where a
// walk between corners costs its Manhattan distance and a teleport costs 0.
func (g *Grid) buildPortalDistances() {
	n := len(g.portals)
	g.portalDist = make([][]int, n)
	for i := range g.portalDist {
		g.portalDist[i] = make([]int, n)
		for j := range g.portalDist[i] {
			g.portalDist[i][j] = ManhattanDistance(g.portals[i], g.portals[j])
		}
	}
	for i, c := range g.portals {
		for j, d := range g.portals {
			if g.teleport[c] == d {
				g.portalDist[i][j] = 0
			}
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if via := g.portalDist[i][k] + g.portalDist[k][j]; via < g.portalDist[i][j] {
					g.portalDist[i][j] = via
				}
			}
		}
	}
}

// Corners returns the bounding-box corners of the open area: top-left,
// bottom-left, top-right, bottom-right. Some may be walls.
func (g *Grid) Corners() [4]Position {
	return g.corners
}

// Teleport returns the diagonally opposite corner when p is an active corner.
func (g *Grid) Teleport(p Position) (Position, bool) {
	to, ok := g.teleport[p]
	return to, ok
}

// TeleportPairs returns the number of active corners
func (g *Grid) TeleportPairs() int {
	return len(g.teleport)
}

// Distance is a lower bound on the number of steps needed to walk from a to b.
// It is the Manhattan distance, shortened through any chain of teleports.
// Walls are ignored, which keeps the bound valid while phasing.
func (g *Grid) Distance(a, b Position) int {
	best := ManhattanDistance(a, b)
	if len(g.portals) == 0 {
		return best
	}
	for i, ci := range g.portals {
		toPortal := ManhattanDistance(a, ci)
		if toPortal >= best {
			continue
		}
		for j, cj := range g.portals {
			if d := toPortal + g.portalDist[i][j] + ManhattanDistance(cj, b); d < best {
				best = d
			}
		}
	}
	return best
}

func containsPosition(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
