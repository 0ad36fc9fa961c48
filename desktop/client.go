package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Position is a grid cell as the planner API encodes it
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Frame is one replayed state of a plan
type Frame struct {
	Step     int        `json:"step"`
	Action   string     `json:"action,omitempty"`
	Position Position   `json:"position"`
	Phase    int        `json:"phase"`
	FoodLeft int        `json:"food_left"`
	PiesLeft int        `json:"pies_left"`
	Vanished []Position `json:"vanished"`
	Board    []string   `json:"board"`
}

// Replay holds every frame of a solved run
type Replay struct {
	RunID    string  `json:"run_id"`
	LayoutID string  `json:"layout_id"`
	Cost     int     `json:"cost"`
	Frames   []Frame `json:"frames"`
}

// RunListItem represents a run from the server
type RunListItem struct {
	ID        string `json:"id"`
	LayoutID  string `json:"layout_id"`
	Heuristic string `json:"heuristic"`
	Status    string `json:"status"`
	Cost      int    `json:"cost"`
	Expanded  int    `json:"expanded"`
}

// LayoutListItem represents a layout in the catalogue
type LayoutListItem struct {
	LayoutID    string `json:"layout_id"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Food        int    `json:"food"`
	Pies        int    `json:"pies"`
}

// WSMessage represents the WebSocket message wrapper
type WSMessage struct {
	RunID string `json:"run_id"`
	Event string `json:"event"`
	Frame *Frame `json:"frame,omitempty"`
}

// apiClient talks to the planner REST API
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(data))
	}
	return nil
}

func (c *apiClient) listRuns() ([]RunListItem, error) {
	var runs []RunListItem
	err := c.do("GET", "/api/runs?sort=created&order=desc", nil, &runs)
	return runs, err
}

func (c *apiClient) listLayouts() ([]LayoutListItem, error) {
	var layouts []LayoutListItem
	err := c.do("GET", "/api/layouts", nil, &layouts)
	return layouts, err
}

// solve plans layout on the server and returns the new run ID
func (c *apiClient) solve(layout string) (string, error) {
	payload := map[string]string{}
	if layout != "" {
		payload["layout"] = layout
	}
	var run RunListItem
	if err := c.do("POST", "/api/solve", payload, &run); err != nil {
		return "", err
	}
	log.Printf("Solved %s: run %s (%s, cost %d)", run.LayoutID, run.ID, run.Status, run.Cost)
	return run.ID, nil
}

func (c *apiClient) replay(runID string) (*Replay, error) {
	var replay Replay
	if err := c.do("GET", "/api/runs/"+url.PathEscape(runID)+"/replay", nil, &replay); err != nil {
		return nil, err
	}
	return &replay, nil
}

// play asks the server to stream the run's frames to every WebSocket viewer
func (c *apiClient) play(runID string, delay time.Duration) error {
	path := fmt.Sprintf("/api/runs/%s/play?delay_ms=%d", url.PathEscape(runID), delay.Milliseconds())
	return c.do("POST", path, nil, nil)
}

// dial opens the live frame feed of a run
func (c *apiClient) dial(runID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	wsURL := url.URL{Scheme: "ws", Host: u.Host, Path: "/ws"}
	if u.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	q := wsURL.Query()
	q.Set("run", runID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	return conn, err
}
