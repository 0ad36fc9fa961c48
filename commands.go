package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/runs"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
	"github.com/wricardo/mcp-training/pacmanplanner/validate"
)

const clearScreen = "\033[H\033[2J"

func solveCommand() *cli.Command {
	return &cli.Command{
		Name:      "solve",
		Usage:     "find a minimum-cost plan for a layout file",
		ArgsUsage: "<layout-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "heuristic",
				Aliases: []string{"H"},
				Value:   search.HeuristicMST,
				Usage:   "heuristic: mst, mfd or null",
				Sources: cli.EnvVars("PACMAN_HEURISTIC"),
			},
			&cli.IntFlag{
				Name:    "max-expansions",
				Value:   service.DefaultMaxExpansions,
				Usage:   "give up after this many expansions (0 = unlimited)",
				Sources: cli.EnvVars("PACMAN_MAX_EXPANSIONS"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "also write the solution to this file",
				Sources: cli.EnvVars("PACMAN_OUTPUT"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   runs.FormatText,
				Usage:   "solution format: text, json or yaml",
				Sources: cli.EnvVars("PACMAN_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "no-visual",
				Usage:   "skip the terminal replay",
				Sources: cli.EnvVars("PACMAN_NO_VISUAL"),
			},
			&cli.DurationFlag{
				Name:    "delay",
				Value:   300 * time.Millisecond,
				Usage:   "pause between replay frames",
				Sources: cli.EnvVars("PACMAN_DELAY"),
			},
		},
		Action: runSolve,
	}
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return cli.Exit("solve takes exactly one layout file", 2)
	}
	path := cmd.Args().First()

	format, err := runs.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	grid, err := maze.LoadLayoutFile(path)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	heuristic := strings.ToLower(cmd.String("heuristic"))
	log := logrus.WithFields(logrus.Fields{"layout": name, "heuristic": heuristic})

	if format == runs.FormatText {
		fmt.Fprintf(out, "Maze: %s (%dx%d), food %d, pies %d, active teleport corners %d\n",
			name, grid.Width(), grid.Height(), len(grid.Food()), len(grid.Pies()), grid.TeleportPairs())
	}

	result, err := search.Solve(grid, heuristic,
		search.WithMaxExpansions(int(cmd.Int("max-expansions"))),
		search.WithLogger(log),
	)
	if err != nil {
		return err
	}

	run := &service.Run{
		LayoutID:      name,
		Grid:          grid,
		Heuristic:     heuristic,
		MaxExpansions: int(cmd.Int("max-expansions")),
		Result:        result,
		CreatedAt:     time.Now(),
	}

	if !cmd.Bool("no-visual") && format == runs.FormatText && result.Solved() {
		if err := animate(out, grid, result.Actions, cmd.Duration("delay")); err != nil {
			return err
		}
	}

	if err := runs.WriteSolution(out, run, format); err != nil {
		return err
	}
	if format == runs.FormatText {
		fmt.Fprintf(out, "Expanded %s nodes (generated %s, max frontier %s) in %s\n",
			humanize.Comma(int64(result.Expanded)),
			humanize.Comma(int64(result.Generated)),
			humanize.Comma(int64(result.MaxFrontier)),
			result.Elapsed.Round(time.Microsecond))
	}

	if output := cmd.String("output"); output != "" {
		if err := writeSolutionFile(output, run, format); err != nil {
			return err
		}
		log.WithField("file", output).Info("Solution written")
	}
	return nil
}

func writeSolutionFile(path string, run *service.Run, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := runs.WriteSolution(f, run, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// animate redraws the board for every state of the plan
func animate(w io.Writer, grid *maze.Grid, actions []search.Action, delay time.Duration) error {
	frames, err := service.BuildFrames(grid, actions)
	if err != nil {
		return err
	}
	last := len(frames) - 1
	for i, f := range frames {
		fmt.Fprint(w, clearScreen)
		for _, row := range f.Board {
			fmt.Fprintln(w, row)
		}
		status := fmt.Sprintf("Step %d/%d", f.Step, last)
		if f.Action != "" {
			status += " " + string(f.Action)
		}
		status += fmt.Sprintf(" | food %d | pies %d", f.FoodLeft, f.PiesLeft)
		if f.Phase > 0 {
			status += fmt.Sprintf(" | phasing %d", f.Phase)
		}
		fmt.Fprintln(w, status)
		if i < last && delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

func generateCommand() *cli.Command {
	defaults := maze.DefaultGenerateOptions()
	return &cli.Command{
		Name:  "generate",
		Usage: "write a random layout whose open cells are connected",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: defaults.Width, Usage: "layout width", Sources: cli.EnvVars("PACMAN_WIDTH")},
			&cli.IntFlag{Name: "height", Value: defaults.Height, Usage: "layout height", Sources: cli.EnvVars("PACMAN_HEIGHT")},
			&cli.FloatFlag{Name: "wall-density", Value: defaults.WallDensity, Usage: "fraction of inner cells that are walls", Sources: cli.EnvVars("PACMAN_WALL_DENSITY")},
			&cli.IntFlag{Name: "food", Value: defaults.Food, Usage: "number of food dots", Sources: cli.EnvVars("PACMAN_FOOD")},
			&cli.IntFlag{Name: "pies", Value: defaults.Pies, Usage: "number of magical pies", Sources: cli.EnvVars("PACMAN_PIES")},
			&cli.IntFlag{Name: "seed", Usage: "random seed (0 = time based)", Sources: cli.EnvVars("PACMAN_SEED")},
			&cli.IntFlag{Name: "start-row", Value: -1, Usage: "Pacman's row (-1 = random)", Sources: cli.EnvVars("PACMAN_START_ROW")},
			&cli.IntFlag{Name: "start-col", Value: -1, Usage: "Pacman's column (-1 = random)", Sources: cli.EnvVars("PACMAN_START_COL")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the layout to this file instead of stdout", Sources: cli.EnvVars("PACMAN_OUTPUT")},
		},
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	opts := maze.GenerateOptions{
		Width:       int(cmd.Int("width")),
		Height:      int(cmd.Int("height")),
		WallDensity: cmd.Float("wall-density"),
		Food:        int(cmd.Int("food")),
		Pies:        int(cmd.Int("pies")),
		Seed:        int64(cmd.Int("seed")),
	}
	row, col := int(cmd.Int("start-row")), int(cmd.Int("start-col"))
	if (row < 0) != (col < 0) {
		return cli.Exit("--start-row and --start-col must be given together", 2)
	}
	if row >= 0 {
		opts.Start = &maze.Position{Row: row, Col: col}
	}

	text, err := maze.GenerateLayout(opts)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	output := cmd.String("output")
	if output == "" {
		_, err := io.WriteString(stdout(cmd), text)
		return err
	}
	if err := os.WriteFile(output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"file":   output,
		"width":  opts.Width,
		"height": opts.Height,
	}).Info("Layout generated")
	return nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check layout files",
		ArgsUsage: "<layout-file>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "solve",
				Usage:   "also run the planner to confirm each layout is solvable",
				Sources: cli.EnvVars("PACMAN_VALIDATE_SOLVE"),
			},
			&cli.StringFlag{
				Name:    "heuristic",
				Aliases: []string{"H"},
				Value:   search.HeuristicMST,
				Usage:   "heuristic used with --solve",
				Sources: cli.EnvVars("PACMAN_HEURISTIC"),
			},
			&cli.IntFlag{
				Name:    "max-expansions",
				Value:   1_000_000,
				Usage:   "expansion cap used with --solve (0 = unlimited)",
				Sources: cli.EnvVars("PACMAN_MAX_EXPANSIONS"),
			},
		},
		Action: runValidate,
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return cli.Exit("validate needs at least one layout file", 2)
	}

	opts := validate.Options{
		Solve:         cmd.Bool("solve"),
		Heuristic:     cmd.String("heuristic"),
		MaxExpansions: int(cmd.Int("max-expansions")),
	}

	results := make([]validate.Result, 0, cmd.NArg())
	for _, path := range cmd.Args().Slice() {
		results = append(results, validate.File(path, opts))
	}

	if !validate.Report(stdout(cmd), results) {
		return cli.Exit("", 1)
	}
	return nil
}
