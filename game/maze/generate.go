package maze

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// GenerateOptions controls random layout generation
type GenerateOptions struct {
	Width       int
	Height      int
	WallDensity float64
	Food        int
	Pies        int
	Seed        int64
	// Start pins Pacman's cell; a random open cell is used when nil.
	Start *Position
}

// DefaultGenerateOptions mirrors the defaults of the layout generator CLI
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Width:       30,
		Height:      15,
		WallDensity: 0.3,
		Food:        5,
		Pies:        3,
	}
}

// Generate builds a random bordered layout whose open cells form a single
// connected region, then places the start, food and pies on distinct open
// cells. A zero Seed picks a time-based seed.
func Generate(opts GenerateOptions) (*Grid, error) {
	if opts.Width < MinGridSize || opts.Height < MinGridSize || opts.Width > MaxGridSize || opts.Height > MaxGridSize {
		return nil, fmt.Errorf("%w: dimensions must be between %d and %d, got %dx%d",
			ErrInvalidGrid, MinGridSize, MaxGridSize, opts.Width, opts.Height)
	}
	if opts.WallDensity < 0 || opts.WallDensity >= 1 {
		return nil, fmt.Errorf("%w: wall density must be in [0,1), got %v", ErrInvalidGrid, opts.WallDensity)
	}
	if opts.Food < 0 || opts.Pies < 0 {
		return nil, fmt.Errorf("%w: food and pie counts must not be negative", ErrInvalidGrid)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	w, h := opts.Width, opts.Height
	open := make([][]bool, h)
	for r := range open {
		open[r] = make([]bool, w)
		for c := range open[r] {
			interior := r > 0 && r < h-1 && c > 0 && c < w-1
			open[r][c] = interior && rng.Float64() >= opts.WallDensity
		}
	}
	if opts.Start != nil {
		s := *opts.Start
		if s.Row <= 0 || s.Row >= h-1 || s.Col <= 0 || s.Col >= w-1 {
			return nil, fmt.Errorf("%w: start %v must be an interior cell", ErrInvalidGrid, s)
		}
		open[s.Row][s.Col] = true
	}

	connectOpenCells(open, rng)

	var cells []Position
	for r := range open {
		for c := range open[r] {
			if open[r][c] {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	if len(cells) == 0 {
		// Fully walled interior: open the centre so there is somewhere to stand.
		centre := Position{Row: h / 2, Col: w / 2}
		open[centre.Row][centre.Col] = true
		cells = append(cells, centre)
	}

	need := 1 + opts.Food + opts.Pies
	if need > len(cells) {
		return nil, fmt.Errorf("%w: %d open cells cannot hold start, %d food and %d pies",
			ErrInvalidGrid, len(cells), opts.Food, opts.Pies)
	}

	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	start := cells[0]
	rest := cells[1:]
	if opts.Start != nil {
		start = *opts.Start
		rest = make([]Position, 0, len(cells)-1)
		for _, c := range cells {
			if c != start {
				rest = append(rest, c)
			}
		}
	}

	food := append([]Position(nil), rest[:opts.Food]...)
	pies := append([]Position(nil), rest[opts.Food:opts.Food+opts.Pies]...)

	var walls []Position
	for r := range open {
		for c := range open[r] {
			if !open[r][c] {
				walls = append(walls, Position{Row: r, Col: c})
			}
		}
	}
	return New(w, h, walls, food, pies, start)
}

// connectOpenCells carves interior walls until all open cells form one
// connected component. Walls that join two components are preferred; when
// none exist a wall touching any open cell is carved to grow a region.
func connectOpenCells(open [][]bool, rng *rand.Rand) {
	h, w := len(open), len(open[0])
	id := func(p Position) int64 { return int64(p.Row*w + p.Col) }

	deltas := []Position{{Row: -1}, {Row: 1}, {Col: 1}, {Col: -1}}
	neighbours := func(p Position) []Position {
		var out []Position
		for _, d := range deltas {
			n := p.Add(d)
			if n.Row > 0 && n.Row < h-1 && n.Col > 0 && n.Col < w-1 {
				out = append(out, n)
			}
		}
		return out
	}

	for {
		cells := simple.NewUndirectedGraph()
		for r := 1; r < h-1; r++ {
			for c := 1; c < w-1; c++ {
				if !open[r][c] {
					continue
				}
				p := Position{Row: r, Col: c}
				if cells.Node(id(p)) == nil {
					cells.AddNode(simple.Node(id(p)))
				}
				for _, n := range neighbours(p) {
					if open[n.Row][n.Col] && cells.Node(id(n)) == nil {
						cells.AddNode(simple.Node(id(n)))
					}
					if open[n.Row][n.Col] && !cells.HasEdgeBetween(id(p), id(n)) {
						cells.SetEdge(cells.NewEdge(simple.Node(id(p)), simple.Node(id(n))))
					}
				}
			}
		}

		components := topo.ConnectedComponents(cells)
		if len(components) <= 1 {
			return
		}
		component := make(map[int64]int, cells.Nodes().Len())
		for i, members := range components {
			for _, n := range members {
				component[n.ID()] = i
			}
		}

		var bridges, frontier []Position
		for r := 1; r < h-1; r++ {
			for c := 1; c < w-1; c++ {
				if open[r][c] {
					continue
				}
				p := Position{Row: r, Col: c}
				touching := make(map[int]bool)
				for _, n := range neighbours(p) {
					if open[n.Row][n.Col] {
						touching[component[id(n)]] = true
					}
				}
				switch {
				case len(touching) >= 2:
					bridges = append(bridges, p)
				case len(touching) == 1:
					frontier = append(frontier, p)
				}
			}
		}

		candidates := bridges
		if len(candidates) == 0 {
			candidates = frontier
		}
		if len(candidates) == 0 {
			return
		}
		p := candidates[rng.Intn(len(candidates))]
		open[p.Row][p.Col] = true
	}
}

// GenerateLayout is Generate followed by rendering the layout text
func GenerateLayout(opts GenerateOptions) (string, error) {
	g, err := Generate(opts)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(g.String(), "\n") + "\n", nil
}
