package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Pacman Planner",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Pacman Planner - MCP Interface

This is a thin client that proxies all requests to the planner REST API.

The planner finds the cheapest sequence of moves that lets Pacman eat every
food dot in a maze. Magical pies let Pacman walk through walls for a few
steps, and the four corners of the maze are teleporters.

AVAILABLE TOOLS:
- list_layouts: List the layouts in the catalogue
- get_layout: Show one layout with its rows, start and corners
- solve_layout: Run A* on a catalogue layout or inline layout text
- get_run: Show the outcome of a previous solve
- list_runs: List previous solves
- replay_run: Step-by-step boards of a solved run
- planner_rules: Movement, pie and teleport rules plus the layout legend`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_layouts",
		Description: "List the layouts available to solve",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLayouts)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_layout",
		Description: "Get a layout's rows, size, start position and teleport corners",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "string",
					"description": "Layout ID from list_layouts",
				},
			},
			Required: []string{"layout"},
		},
	}, c.handleGetLayout)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_layout",
		Description: "Find a minimum-cost plan that eats all food. Pass either a catalogue layout ID or inline layout text.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "string",
					"description": "Layout ID from list_layouts (optional, defaults to the catalogue default)",
				},
				"layout_text": map[string]interface{}{
					"type":        "string",
					"description": "Inline layout using % wall, . food, O pie, P Pacman, space floor (overrides layout)",
				},
				"heuristic": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"mst", "mfd", "null"},
					"description": "Heuristic: mst (minimum spanning tree), mfd (minimum food distance) or null",
				},
				"max_expansions": map[string]interface{}{
					"type":        "integer",
					"description": "Stop after this many node expansions (0 means unlimited)",
				},
			},
		},
	}, c.handleSolveLayout)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Get the status, cost, actions and search statistics of a solve run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID returned by solve_layout",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List previous solve runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "string",
					"description": "Only runs of this layout (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs (optional)",
				},
			},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "replay_run",
		Description: "Replay a solved run and show the board after each step",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID returned by solve_layout",
				},
				"max_frames": map[string]interface{}{
					"type":        "integer",
					"description": "Only render the first N frames (optional)",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleReplayRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "planner_rules",
		Description: "Describe the movement rules, pie phasing, corner teleports and layout legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePlannerRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg reads a JSON number argument; numbers arrive as float64
func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// Tool handlers

func (c *Client) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var layouts []service.LayoutInfo
	if err := c.apiCall(ctx, "GET", "/api/layouts", nil, &layouts); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLayouts(layouts)), nil
}

func (c *Client) handleGetLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(request.GetArguments(), "layout")
	if name == "" {
		return mcp.NewToolResultError("layout is required"), nil
	}

	var detail service.LayoutDetail
	if err := c.apiCall(ctx, "GET", "/api/layouts/"+url.PathEscape(name), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLayoutDetail(&detail)), nil
}

func (c *Client) handleSolveLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	req := service.SolveRequest{
		Layout:        stringArg(args, "layout"),
		LayoutText:    stringArg(args, "layout_text"),
		Heuristic:     stringArg(args, "heuristic"),
		MaxExpansions: intArg(args, "max_expansions"),
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "POST", "/api/solve", req, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run)), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID := stringArg(request.GetArguments(), "run_id")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(runID), nil, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run)), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query := url.Values{}
	if layout := stringArg(args, "layout"); layout != "" {
		query.Set("layout", layout)
	}
	if limit := intArg(args, "limit"); limit > 0 {
		query.Set("limit", fmt.Sprint(limit))
	}

	path := "/api/runs"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var runs []service.RunInfo
	if err := c.apiCall(ctx, "GET", path, nil, &runs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d):\n\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(&b, "- %s layout=%s heuristic=%s status=%s cost=%d expanded=%d\n",
			r.ID, r.LayoutID, r.Heuristic, r.Status, r.Cost, r.Expanded)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleReplayRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID := stringArg(args, "run_id")
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var replay service.ReplayResponse
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(runID)+"/replay", nil, &replay); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReplay(&replay, intArg(args, "max_frames"))), nil
}

func (c *Client) handlePlannerRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(plannerRules), nil
}

const plannerRules = `Pacman Planner - Rules

OBJECTIVE:
Eat every food dot. The plan minimises the number of moves; Stop is free
and only ends a finished plan.

LAYOUT LEGEND:
  %  wall
  .  food
  O  magical pie
  P  Pacman's start
     (space) floor

MOVES:
North, South, East and West move one cell. Moving into a wall is illegal
unless Pacman is phasing. Moving off the grid is always illegal.

MAGICAL PIES:
Eating a pie starts a 5-step phase. While the phase lasts Pacman may walk
through walls, and walls Pacman passes through vanish from the board. Each
later move counts the phase down; eating another pie restarts it at 5.
When the phase reaches 0 every vanished wall returns, and a plan that
leaves Pacman standing inside a wall at that moment is a dead end.

CORNER TELEPORTS:
The corners are the extreme cells of the open area: smallest and largest
row combined with smallest and largest column. Top-left pairs with
bottom-right and bottom-left pairs with top-right. A pair is active when
both of its cells are open; stepping onto an active corner moves Pacman
to its partner at no extra cost.

HEURISTICS:
  mfd   distance to the closest food
  mst   minimum spanning tree over Pacman and the remaining food
  null  uniform-cost search
Both mfd and mst use teleport-aware distances and never overestimate.`

func formatLayouts(layouts []service.LayoutInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Layouts (%d):\n\n", len(layouts))
	for _, l := range layouts {
		fmt.Fprintf(&b, "- %s (%dx%d, food=%d, pies=%d, teleports=%d)",
			l.LayoutID, l.Width, l.Height, l.Food, l.Pies, l.Teleports)
		if l.Description != "" {
			fmt.Fprintf(&b, ": %s", l.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatLayoutDetail(d *service.LayoutDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Layout: %s\n", d.LayoutID)
	if d.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", d.Description)
	}
	fmt.Fprintf(&b, "Size: %dx%d\n", d.Width, d.Height)
	fmt.Fprintf(&b, "Food: %d  Pies: %d  Teleports: %d\n", d.Food, d.Pies, d.Teleports)
	fmt.Fprintf(&b, "Start: %s\n", d.Start)
	fmt.Fprintf(&b, "Corners: TL %s, BL %s, TR %s, BR %s\n\n", d.Corners[0], d.Corners[1], d.Corners[2], d.Corners[3])
	for _, row := range d.Rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatRun(r *service.RunInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", r.ID)
	fmt.Fprintf(&b, "Layout: %s  Heuristic: %s\n", r.LayoutID, r.Heuristic)
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	if r.Status.String() == "solved" {
		fmt.Fprintf(&b, "Total cost: %d\n", r.Cost)
		actions := make([]string, len(r.Actions))
		for i, a := range r.Actions {
			actions[i] = string(a)
		}
		fmt.Fprintf(&b, "Actions: %s\n", strings.Join(actions, ", "))
	} else {
		b.WriteString("No solution found!\n")
	}
	fmt.Fprintf(&b, "Expanded: %d  Generated: %d  Max frontier: %d  Time: %dms",
		r.Expanded, r.Generated, r.MaxFrontier, r.ElapsedMillis)
	if r.Cached {
		b.WriteString(" (cached)")
	}
	b.WriteByte('\n')
	return b.String()
}

func formatReplay(r *service.ReplayResponse, maxFrames int) string {
	frames := r.Frames
	if maxFrames > 0 && maxFrames < len(frames) {
		frames = frames[:maxFrames]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Replay of %s (%s), cost %d, %d frames\n", r.RunID, r.LayoutID, r.Cost, len(r.Frames))
	for _, f := range frames {
		b.WriteByte('\n')
		if f.Action == "" {
			fmt.Fprintf(&b, "Step %d: start at %s", f.Step, f.Position)
		} else {
			fmt.Fprintf(&b, "Step %d: %s to %s", f.Step, f.Action, f.Position)
		}
		fmt.Fprintf(&b, " | food %d | pies %d", f.FoodLeft, f.PiesLeft)
		if f.Phase > 0 {
			fmt.Fprintf(&b, " | phase %d", f.Phase)
		}
		b.WriteByte('\n')
		for _, row := range f.Board {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}
	if len(frames) < len(r.Frames) {
		fmt.Fprintf(&b, "\n... %d more frames\n", len(r.Frames)-len(frames))
	}
	return b.String()
}
