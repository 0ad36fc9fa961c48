package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
	"github.com/wricardo/mcp-training/pacmanplanner/transport/websocket"
)

const (
	defaultPlayDelay = 250 * time.Millisecond
	maxPlayDelay     = 5 * time.Second
)

// Server represents the REST API server
type Server struct {
	service   service.SolverService
	hub       *websocket.Hub
	router    *mux.Router
	logger    logrus.FieldLogger
	staticDir string
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStaticDir serves files from dir for every path outside /api and /ws
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// NewServer creates a new API server
func NewServer(solver service.SolverService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: solver,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Layout catalogue
	api.HandleFunc("/layouts", s.handleListLayouts).Methods("GET")
	api.HandleFunc("/layouts", s.handleSaveLayout).Methods("POST")
	api.HandleFunc("/layouts/{name}", s.handleGetLayout).Methods("GET")

	// Planning
	api.HandleFunc("/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")
	api.HandleFunc("/runs/{id}/replay", s.handleReplay).Methods("GET")
	api.HandleFunc("/runs/{id}/play", s.handlePlay).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("HTTP request")
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRunNotSolved):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Layout Handlers

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	layouts, err := s.service.ListLayouts(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, layouts)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".lay")

	detail, err := s.service.GetLayout(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string   `json:"name"`
		Layout string   `json:"layout,omitempty"`
		Rows   []string `json:"rows,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Layout name is required")
		return
	}

	text := req.Layout
	if text == "" {
		text = strings.Join(req.Rows, "\n")
	}

	info, err := s.service.SaveLayout(r.Context(), req.Name, text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

// Run Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	run, err := s.service.Solve(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":    run.ID,
		"layout":    run.LayoutID,
		"heuristic": run.Heuristic,
		"status":    run.Status.String(),
		"cost":      run.Cost,
		"expanded":  run.Expanded,
		"cached":    run.Cached,
	}).Info("Solve request completed")

	respondJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created" (default), "accessed", "cost", "expanded"
	order := query.Get("order") // "asc", "desc" (default)
	if order != "asc" {
		order = "desc"
	}

	if layout := query.Get("layout"); layout != "" {
		filtered := make([]*service.RunInfo, 0, len(runs))
		for _, run := range runs {
			if strings.EqualFold(run.LayoutID, layout) {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}

	less := func(a, b *service.RunInfo) bool {
		switch sortBy {
		case "accessed":
			return a.LastAccessedAt.Before(b.LastAccessedAt)
		case "cost":
			return a.Cost < b.Cost
		case "expanded":
			return a.Expanded < b.Expanded
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if order == "asc" {
			return less(runs[i], runs[j])
		}
		return less(runs[j], runs[i])
	})

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(runs) {
			runs = runs[:limit]
		}
	}

	respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.service.GetRun(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if err := s.service.DeleteRun(r.Context(), runID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Run deleted successfully",
		"run_id":  runID,
	})
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	replay, err := s.service.Replay(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, replay)
}

// handlePlay streams a run's frames to its WebSocket viewers
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	delay := defaultPlayDelay
	if ms := r.URL.Query().Get("delay_ms"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "delay_ms must be a non-negative integer")
			return
		}
		delay = time.Duration(n) * time.Millisecond
		if delay > maxPlayDelay {
			delay = maxPlayDelay
		}
	}

	replay, err := s.service.Replay(r.Context(), runID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "WebSocket hub is not running")
		return
	}

	viewers := s.hub.Viewers(replay.RunID)
	go s.play(replay, delay)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run_id":   replay.RunID,
		"frames":   len(replay.Frames),
		"viewers":  viewers,
		"delay_ms": delay.Milliseconds(),
	})
}

func (s *Server) play(replay *service.ReplayResponse, delay time.Duration) {
	s.hub.BroadcastEvent(replay.RunID, websocket.EventPlayback, map[string]int{
		"frames": len(replay.Frames),
		"cost":   replay.Cost,
	})
	for i := range replay.Frames {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}
		s.hub.BroadcastFrame(replay.RunID, &replay.Frames[i])
	}
	s.hub.BroadcastEvent(replay.RunID, websocket.EventDone, nil)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run")
	if runID == "" {
		http.Error(w, "run parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "WebSocket hub is not running", http.StatusServiceUnavailable)
		return
	}

	run, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		http.Error(w, "Invalid run", statusFor(err))
		return
	}

	s.hub.ServeWS(w, r, run.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
