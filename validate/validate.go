// Package validate checks layout files before they are added to the
// catalogue. It verifies that a layout parses, reports which food can be
// reached on foot from Pacman's start (corner teleports included) and can
// optionally run the planner to confirm the layout is solvable.
package validate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
	"github.com/zyedidia/generic/mapset"
)

// Options controls the optional solvability check
type Options struct {
	Solve         bool
	Heuristic     string
	MaxExpansions int
}

// Result captures the outcome of validating a single layout.
// Errors make a layout invalid; Warnings and Info never do.
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) info(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// File loads and validates a layout file
func File(path string, opts Options) Result {
	g, err := maze.LoadLayoutFile(path)
	if err != nil {
		result := Result{File: filepath.Base(path)}
		result.fail("%v", err)
		return result
	}
	return Grid(filepath.Base(path), g, opts)
}

// Grid validates an already parsed layout
func Grid(name string, g *maze.Grid, opts Options) Result {
	result := Result{File: name, Valid: true}

	food, pies := g.Food(), g.Pies()
	result.info("Grid: %dx%d", g.Width(), g.Height())
	result.info("Start: %s", g.Start())
	result.info("Food: %d, pies: %d, walls: %d", len(food), len(pies), len(g.Walls()))
	result.info("Active teleport corners: %d", g.TeleportPairs())

	if len(food) == 0 {
		result.warn("Layout has no food; the empty plan already solves it")
	}

	reach := Reachable(g)
	var stranded []maze.Position
	for _, f := range food {
		if !reach.Has(f) {
			stranded = append(stranded, f)
		}
	}
	piesOnFoot := 0
	for _, p := range pies {
		if reach.Has(p) {
			piesOnFoot++
		}
	}

	switch {
	case len(stranded) == 0:
		result.info("Connectivity: all %d food reachable without phasing", len(food))
	case piesOnFoot == 0:
		result.fail("Connectivity failure: %d/%d food unreachable and no pie can be reached", len(stranded), len(food))
		for _, f := range stranded {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: food at %s", f))
		}
	default:
		result.warn("%d/%d food can only be reached by phasing through walls", len(stranded), len(food))
	}

	if opts.Solve && result.Valid {
		checkSolvable(&result, g, opts)
	}

	return result
}

func checkSolvable(result *Result, g *maze.Grid, opts Options) {
	heuristic := opts.Heuristic
	if heuristic == "" {
		heuristic = search.HeuristicMST
	}

	res, err := search.Solve(g, heuristic, search.WithMaxExpansions(opts.MaxExpansions))
	if err != nil {
		result.fail("Planner error: %v", err)
		return
	}

	switch res.Status {
	case search.StatusSolved:
		result.info("Solvable: cost %d (%s nodes expanded)", res.Cost, humanize.Comma(int64(res.Expanded)))
	case search.StatusUnsolvable:
		result.fail("Unsolvable: no plan eats all food (%s nodes expanded)", humanize.Comma(int64(res.Expanded)))
	case search.StatusLimitExceeded:
		result.warn("Solvability unknown: expansion limit of %s reached", humanize.Comma(int64(opts.MaxExpansions)))
	}
}

// Reachable returns the cells Pacman can enter on foot from the start,
// start included. Entering an active corner relocates Pacman to its partner,
// so walking continues from the partner, never from the corner itself.
func Reachable(g *maze.Grid) mapset.Set[maze.Position] {
	reached := mapset.New[maze.Position]()
	standing := mapset.New[maze.Position]()
	reached.Put(g.Start())
	standing.Put(g.Start())
	queue := []maze.Position{g.Start()}

	stand := func(p maze.Position) {
		if !standing.Has(p) {
			standing.Put(p)
			queue = append(queue, p)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, a := range search.Directions {
			next := current.Add(a.Delta())
			if !g.InBounds(next) || g.IsWall(next) {
				continue
			}
			reached.Put(next)
			if to, ok := g.Teleport(next); ok {
				stand(to)
			} else {
				stand(next)
			}
		}
	}
	return reached
}

// Report prints results and returns whether every layout was valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  ✓ "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠ "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All layouts are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some layouts have errors")
	}
	return allValid
}
