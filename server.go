package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/pacmanplanner/api"
	"github.com/wricardo/mcp-training/pacmanplanner/game/config"
	"github.com/wricardo/mcp-training/pacmanplanner/game/runs"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
	"github.com/wricardo/mcp-training/pacmanplanner/transport/mcp"
	"github.com/wricardo/mcp-training/pacmanplanner/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// storageFlags are shared by serve and mcp
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "layouts-dir",
			Value:   "layouts",
			Usage:   "directory containing layout files and the optional layouts.yaml index",
			Sources: cli.EnvVars("PACMAN_LAYOUTS_DIR"),
		},
		&cli.StringFlag{
			Name:    "runs-dir",
			Value:   "runs",
			Usage:   "directory runs are persisted to (empty keeps runs in memory)",
			Sources: cli.EnvVars("PACMAN_RUNS_DIR"),
		},
		&cli.IntFlag{
			Name:    "memo-size",
			Value:   service.DefaultMemoSize,
			Usage:   "number of search results kept for identical solve requests",
			Sources: cli.EnvVars("PACMAN_MEMO_SIZE"),
		},
		&cli.IntFlag{
			Name:    "max-expansions",
			Value:   service.DefaultMaxExpansions,
			Usage:   "expansion cap for solve requests that do not set one (0 = unlimited)",
			Sources: cli.EnvVars("PACMAN_MAX_EXPANSIONS"),
		},
		&cli.DurationFlag{
			Name:    "run-ttl",
			Value:   24 * time.Hour,
			Usage:   "delete runs not accessed for this long",
			Sources: cli.EnvVars("PACMAN_RUN_TTL"),
		},
	}
}

func serveCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("PACMAN_HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PACMAN_PORT")},
		&cli.StringFlag{Name: "static-dir", Usage: "serve a web viewer from this directory", Sources: cli.EnvVars("PACMAN_STATIC_DIR")},
		&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("PACMAN_NGROK", "NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("PACMAN_NGROK_AUTH", "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("PACMAN_NGROK_DOMAIN", "NGROK_DOMAIN")},
	}
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "run the REST API, WebSocket replay feed and /mcp endpoint",
		Flags:   append(flags, storageFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			solver, err := initializeServices(cmd, logrus.StandardLogger())
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runHTTPServer(ctx, cmd, solver)
		},
	}
}

func mcpCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Value:   "http://localhost:8080",
			Usage:   "reuse this API server when it is reachable",
			Sources: cli.EnvVars("PACMAN_API_URL"),
		},
	}
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the REST API",
		Flags:   append(flags, storageFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStdioMCPWithInternalServer(ctx, cmd)
		},
	}
}

// initializeServices wires the layout catalogue, run store and solver service.
// It also starts a background routine that prunes stale runs.
func initializeServices(cmd *cli.Command, logger *logrus.Logger) (service.SolverService, error) {
	layouts, err := config.NewManager(cmd.String("layouts-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to create layout manager: %w", err)
	}

	runManager := runs.NewManager()
	if dir := cmd.String("runs-dir"); dir != "" {
		persistence, err := runs.NewFilePersistence(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create run persistence: %w", err)
		}
		runManager = runs.NewManagerWithPersistence(persistence, logger)

		if err := runManager.LoadPersistedRuns(); err != nil {
			logger.WithError(err).Warn("Failed to load persisted runs")
		}
	}

	solver, err := service.NewSolverService(runManager, layouts, logger, int(cmd.Int("memo-size")),
		service.WithDefaultMaxExpansions(int(cmd.Int("max-expansions"))))
	if err != nil {
		return nil, err
	}

	if ttl := cmd.Duration("run-ttl"); ttl > 0 {
		go runCleanupRoutine(runManager, ttl, logger)
	}

	return solver, nil
}

// runCleanupRoutine periodically removes runs that have not been accessed
// within ttl.
func runCleanupRoutine(manager *runs.Manager, ttl time.Duration, logger logrus.FieldLogger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if removed := manager.CleanupExpired(ttl); removed > 0 {
			logger.WithField("removed", removed).Info("Cleaned up expired runs")
		}
	}
}

// newRouter mounts the API server and the /mcp endpoint
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command, solver service.SolverService) error {
	logger := logrus.StandardLogger()

	hub := websocket.NewHub(logger)
	go hub.Run()

	opts := []api.Option{api.WithLogger(logger)}
	if dir := cmd.String("static-dir"); dir != "" {
		opts = append(opts, api.WithStaticDir(dir))
	}
	apiServer := api.NewServer(solver, hub, opts...)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.WithFields(logrus.Fields{
			"addr":      addr,
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?run=<run_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, mainRouter, logger)
		}()
	}

	var err error
	select {
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	case err = <-serveErr:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WithError(shutdownErr).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	logger.Info("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is cancelled
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler, logger logrus.FieldLogger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("Starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.WithField("domain", domain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	logger.WithFields(logrus.Fields{
		"url":       ngrokURL,
		"api":       ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?run=<run_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Info("Ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Debug("Ngrok server stopped")
	}
	logger.Info("Ngrok tunnel closed")
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses the API at --api-url when it answers; otherwise it starts an
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cmd *cli.Command) error {
	logger := logrus.StandardLogger()
	externalURL := cmd.String("api-url")
	baseURL := externalURL

	logger.WithField("url", externalURL).Debug("Checking for external API server")
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		logger.WithField("url", externalURL).Info("External API server found, using it for MCP")
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		logger.Info("No external API server found, starting internal HTTP server")

		solver, err := initializeServices(cmd, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger)
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(solver, hub, api.WithLogger(logger))}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("Internal HTTP server error")
			}
		}()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		logger.WithField("url", baseURL).Info("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
