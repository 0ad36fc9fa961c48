package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/pacmanplanner/api"
	"github.com/wricardo/mcp-training/pacmanplanner/game/config"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/runs"
	"github.com/wricardo/mcp-training/pacmanplanner/game/search"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
	"github.com/wricardo/mcp-training/pacmanplanner/transport/websocket"
)

const corridorLayout = "%%%%%%%\n%P  ..%\n%%%%%%%\n"

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected text content in result")
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	require.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req service.SolveRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(service.RunInfo{ID: "run-1", LayoutID: req.Layout})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var run service.RunInfo
	err := client.apiCall(context.Background(), "POST", "/api/solve", service.SolveRequest{Layout: "maze"}, &run)

	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "maze", run.LayoutID)
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		assert.Error(t, client.apiCall(context.Background(), "GET", "/api/layouts", nil, nil))
	})

	t.Run("json error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found: run x"})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/runs/x", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "not found: run x", err.Error())
	})

	t.Run("plain error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error: 500")
	})
}

func TestClient_handleSolveLayout(t *testing.T) {
	var received service.SolveRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/solve", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(service.RunInfo{
			ID:        "run-42",
			LayoutID:  "inline",
			Heuristic: "mfd",
			Status:    search.StatusSolved,
			Cost:      2,
			Actions:   []search.Action{search.South, search.South},
			Expanded:  3,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSolveLayout(context.Background(), callTool("solve_layout", map[string]interface{}{
		"layout_text":    "%%%\n%P%\n%.%\n%%%",
		"heuristic":      "mfd",
		"max_expansions": float64(500),
	}))
	require.NoError(t, err)

	assert.Equal(t, "%%%\n%P%\n%.%\n%%%", received.LayoutText)
	assert.Equal(t, "mfd", received.Heuristic)
	assert.Equal(t, 500, received.MaxExpansions)

	text := resultText(t, result)
	assert.Contains(t, text, "Run: run-42")
	assert.Contains(t, text, "Total cost: 2")
	assert.Contains(t, text, "Actions: South, South")
}

func TestClient_handleSolveLayout_Unsolvable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.RunInfo{ID: "run-0", Status: search.StatusUnsolvable})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleSolveLayout(context.Background(), callTool("solve_layout", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Status: unsolvable")
	assert.Contains(t, text, "No solution found!")
}

func TestClient_RequiredArguments(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		want    string
	}{
		{"get_layout", client.handleGetLayout, "layout is required"},
		{"get_run", client.handleGetRun, "run_id is required"},
		{"replay_run", client.handleReplayRun, "run_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callTool(tt.name, map[string]interface{}{}))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Equal(t, tt.want, resultText(t, result))
		})
	}
}

func TestClient_handlePlannerRules(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handlePlannerRules(context.Background(), callTool("planner_rules", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, section := range []string{"OBJECTIVE:", "LAYOUT LEGEND:", "MAGICAL PIES:", "CORNER TELEPORTS:", "HEURISTICS:"} {
		assert.Contains(t, text, section)
	}
}

func TestFormatReplay(t *testing.T) {
	replay := &service.ReplayResponse{
		RunID:    "r",
		LayoutID: "tiny",
		Cost:     2,
		Frames: []service.Frame{
			{Step: 0, Position: maze.Position{Row: 1, Col: 1}, FoodLeft: 1, PiesLeft: 1, Board: []string{"%P.%"}},
			{Step: 1, Action: search.East, Position: maze.Position{Row: 1, Col: 2}, Phase: 5, Board: []string{"% P%"}},
			{Step: 2, Action: search.East, Position: maze.Position{Row: 1, Col: 3}, Phase: 4},
		},
	}

	text := formatReplay(replay, 2)

	assert.Contains(t, text, "Step 0: start at (1,1) | food 1 | pies 1\n%P.%")
	assert.Contains(t, text, "Step 1: East to (1,2) | food 0 | pies 0 | phase 5")
	assert.NotContains(t, text, "Step 2:")
	assert.Contains(t, text, "... 1 more frames")
}

// TestClient_EndToEnd drives the tools against a real API server.
func TestClient_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corridor.lay"), []byte(corridorLayout), 0644))

	layouts, err := config.NewManager(dir)
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	solver, err := service.NewSolverService(runs.NewManager(), layouts, logger, 8)
	require.NoError(t, err)

	hub := websocket.NewHub(logger)
	go hub.Run()
	server := httptest.NewServer(api.NewServer(solver, hub, api.WithLogger(logger)))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := client.handleListLayouts(ctx, callTool("list_layouts", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "- corridor (7x3, food=2, pies=0")

	result, err = client.handleSolveLayout(ctx, callTool("solve_layout", map[string]interface{}{"layout": "corridor"}))
	require.NoError(t, err)
	text := resultText(t, result)
	require.False(t, result.IsError, text)
	assert.Contains(t, text, "Total cost: 4")
	assert.Contains(t, text, "Actions: East, East, East, East")

	runID := strings.TrimPrefix(strings.SplitN(text, "\n", 2)[0], "Run: ")

	result, err = client.handleGetRun(ctx, callTool("get_run", map[string]interface{}{"run_id": runID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Status: solved")

	result, err = client.handleReplayRun(ctx, callTool("replay_run", map[string]interface{}{
		"run_id":     runID,
		"max_frames": float64(2),
	}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "cost 4, 5 frames")
	assert.Contains(t, text, "Step 0: start at (1,1)")
	assert.Contains(t, text, "%P  ..%")
	assert.Contains(t, text, "... 3 more frames")

	result, err = client.handleListRuns(ctx, callTool("list_runs", map[string]interface{}{"layout": "corridor"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Runs (1):")

	result, err = client.handleGetRun(ctx, callTool("get_run", map[string]interface{}{"run_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
