// Command analyze compares the planner's heuristics on every layout in a
// directory (default "layouts"). For each layout it prints the dimensions,
// food, pies and teleports, the heuristic estimates at the start state, and
// the cost and search effort of solving with each heuristic.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
)

// Per-heuristic expansion cap so one hard layout cannot stall the report
const maxExpansions = 2_000_000

var heuristics = []string{search.HeuristicNull, search.HeuristicMFD, search.HeuristicMST}

func main() {
	dir := "layouts"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := layoutFiles(dir)
	if err != nil {
		fmt.Printf("Error finding layouts: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeLayout(os.Stdout, file, maxExpansions); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func layoutFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.lay", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func analyzeLayout(w io.Writer, path string, limit int) error {
	g, err := maze.LoadLayoutFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Grid Size: %d x %d\n", g.Width(), g.Height())
	fmt.Fprintf(w, "Start: %s\n", g.Start())
	fmt.Fprintf(w, "Food: %d  Pies: %d  Walls: %d\n", len(g.Food()), len(g.Pies()), len(g.Walls()))
	fmt.Fprintf(w, "Active teleport corners: %d\n", g.TeleportPairs())

	start := search.InitialState(g)
	var estimates []string
	for _, name := range heuristics {
		h, _ := search.HeuristicByName(name)
		estimates = append(estimates, fmt.Sprintf("%s=%d", name, h(g, start)))
	}
	fmt.Fprintf(w, "Start estimates: %s\n", strings.Join(estimates, " "))

	costs := map[string]int{}
	for _, name := range heuristics {
		res, err := search.Solve(g, name, search.WithMaxExpansions(limit))
		if err != nil {
			return err
		}
		h, _ := search.HeuristicByName(name)

		line := fmt.Sprintf("%-5s %-24s", name, res.Status)
		if res.Solved() {
			line += fmt.Sprintf(" cost=%-4d", res.Cost)
		} else {
			line += "          "
		}
		line += fmt.Sprintf(" expanded=%s generated=%s frontier=%s time=%s",
			humanize.Comma(int64(res.Expanded)),
			humanize.Comma(int64(res.Generated)),
			humanize.Comma(int64(res.MaxFrontier)),
			res.Elapsed.Round(time.Microsecond))
		fmt.Fprintln(w, line)

		if res.Solved() {
			costs[name] = res.Cost
		}
		if res.Solved() && h(g, start) > res.Cost {
			fmt.Fprintf(w, "⚠️  %s overestimates at the start: %d > %d\n", name, h(g, start), res.Cost)
		}
	}

	// Every heuristic is admissible, so solved costs must match
	seen := -1
	for _, name := range heuristics {
		cost, ok := costs[name]
		if !ok {
			continue
		}
		if seen >= 0 && cost != seen {
			fmt.Fprintf(w, "❌ Cost mismatch: %s found %d, expected %d\n", name, cost, seen)
		}
		seen = cost
	}
	return nil
}
