// Command pacman plans minimum-cost routes for Pacman to eat every food
// dot in a maze, with magical pies that let Pacman phase through walls and
// teleporting corners.
//
// Subcommands:
//  1. "solve"    – solve a layout file and replay the plan in the terminal
//  2. "generate" – write a random, connected layout
//  3. "validate" – check layout files and optionally confirm they are solvable
//  4. "serve"    – run the REST API, WebSocket replay feed and an /mcp endpoint,
//     optionally exposed through an ngrok tunnel
//  5. "mcp"      – run an MCP stdio server against an external or internal API
//
// Every flag can also be set through a PACMAN_* environment variable, and a
// .env file in the working directory is loaded first.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pacman Planner"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("Error loading .env file")
		}
	} else {
		logrus.Debug("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "pacman",
		Usage:   AppName + ": A* search for food-collection plans",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("PACMAN_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "also append log output to this file",
				Sources: cli.EnvVars("PACMAN_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "log format: text or json",
				Sources: cli.EnvVars("PACMAN_LOG_FORMAT"),
			},
		},
		Before: configureLogging,
		Commands: []*cli.Command{
			solveCommand(),
			generateCommand(),
			validateCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}
}

// configureLogging applies the global logging flags to the logrus standard logger
func configureLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logger := logrus.StandardLogger()

	if cmd.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	switch cmd.String("log-format") {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return ctx, fmt.Errorf("unknown log format %q", cmd.String("log-format"))
	}

	var out io.Writer = os.Stderr
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return ctx, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}
	logger.SetOutput(out)

	return ctx, nil
}

// stdout returns the writer commands print results to
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
