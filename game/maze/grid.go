package maze

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

var (
	ErrMalformedLayout = errors.New("malformed layout")
	ErrInvalidGrid     = errors.New("invalid grid")
)

// Grid is the immutable maze model: walls, initial food and pies, the start
// cell and the corner teleport pairs. It is never mutated after New returns.
type Grid struct {
	width, height int
	walls         mapset.Set[Position]
	wallList      []Position
	food          []Position
	pies          []Position
	start         Position

	// corners holds the bounding-box corners of the open area in the order
	// top-left, bottom-left, top-right, bottom-right.
	corners  [4]Position
	teleport map[Position]Position

	// Shortest corner-to-corner distances with teleports costing nothing,
	// indexed like portals.
	portals    []Position
	portalDist [][]int
}

// New validates the cells and builds a Grid. Every coordinate must lie inside
// [0,height) x [0,width); food, pies and start must be distinct open cells.
func New(width, height int, walls, food, pies []Position, start Position) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidGrid, width, height)
	}

	g := &Grid{
		width:  width,
		height: height,
		walls:  mapset.New[Position](),
		start:  start,
	}

	for _, w := range walls {
		if !g.InBounds(w) {
			return nil, fmt.Errorf("%w: wall %v out of bounds", ErrInvalidGrid, w)
		}
		if !g.walls.Has(w) {
			g.walls.Put(w)
			g.wallList = append(g.wallList, w)
		}
	}
	sortPositions(g.wallList)

	if !g.InBounds(start) {
		return nil, fmt.Errorf("%w: start %v out of bounds", ErrInvalidGrid, start)
	}
	if g.walls.Has(start) {
		return nil, fmt.Errorf("%w: start %v is a wall", ErrInvalidGrid, start)
	}

	seen := mapset.New[Position]()
	seen.Put(start)
	place := func(kind string, cells []Position) ([]Position, error) {
		out := make([]Position, 0, len(cells))
		for _, c := range cells {
			switch {
			case !g.InBounds(c):
				return nil, fmt.Errorf("%w: %s %v out of bounds", ErrInvalidGrid, kind, c)
			case g.walls.Has(c):
				return nil, fmt.Errorf("%w: %s %v is a wall", ErrInvalidGrid, kind, c)
			case seen.Has(c):
				return nil, fmt.Errorf("%w: %s %v overlaps another item", ErrInvalidGrid, kind, c)
			}
			seen.Put(c)
			out = append(out, c)
		}
		sortPositions(out)
		return out, nil
	}

	var err error
	if g.food, err = place("food", food); err != nil {
		return nil, err
	}
	if g.pies, err = place("pie", pies); err != nil {
		return nil, err
	}

	g.buildCorners()
	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Start returns Pacman's initial cell
func (g *Grid) Start() Position { return g.start }

// InBounds reports whether p lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.height && p.Col >= 0 && p.Col < g.width
}

// IsWall reports whether p is a permanent wall cell
func (g *Grid) IsWall(p Position) bool {
	return g.walls.Has(p)
}

// Walls returns the wall cells in row-major order
func (g *Grid) Walls() []Position {
	return append([]Position(nil), g.wallList...)
}

// Food returns the initial food cells in row-major order
func (g *Grid) Food() []Position {
	return append([]Position(nil), g.food...)
}

// Pies returns the initial magical pie cells in row-major order
func (g *Grid) Pies() []Position {
	return append([]Position(nil), g.pies...)
}

// String renders the grid as layout text
func (g *Grid) String() string {
	return strings.Join(g.Render(Overlay{Pacman: g.start, Food: g.food, Pies: g.pies}), "\n")
}

// Overlay describes the dynamic contents drawn on top of the static walls.
type Overlay struct {
	Pacman   Position
	Food     []Position
	Pies     []Position
	Vanished []Position
}

// Render draws one text row per grid row. Vanished walls are drawn with
// VanishedSymbol and Pacman is drawn last so it is always visible.
func (g *Grid) Render(o Overlay) []string {
	cells := make([][]byte, g.height)
	for r := range cells {
		cells[r] = []byte(strings.Repeat(string(FloorSymbol), g.width))
	}
	set := func(p Position, b byte) {
		if g.InBounds(p) {
			cells[p.Row][p.Col] = b
		}
	}
	for _, w := range g.wallList {
		set(w, WallSymbol)
	}
	for _, v := range o.Vanished {
		set(v, VanishedSymbol)
	}
	for _, f := range o.Food {
		set(f, FoodSymbol)
	}
	for _, p := range o.Pies {
		set(p, PieSymbol)
	}
	set(o.Pacman, StartSymbol)

	rows := make([]string, g.height)
	for r := range cells {
		rows[r] = string(cells[r])
	}
	return rows
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Less(ps[j]) })
}
