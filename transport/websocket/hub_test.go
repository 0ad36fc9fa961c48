package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/pacmanplanner/game/maze"
	"github.com/wricardo/mcp-training/pacmanplanner/game/service"
)

func newTestHub() *Hub {
	logger, _ := test.NewNullLogger()
	return NewHub(logger)
}

func newTestClient(hub *Hub, runID string) *Client {
	return &Client{
		hub:   hub,
		runID: runID,
		send:  make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	require.NotNil(t, hub)
	assert.NotNil(t, hub.runs)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.logger)
}

func TestHubRegisterClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "run-1")

	hub.registerClient(client)

	assert.True(t, hub.runs["run-1"][client])
	assert.Equal(t, 1, hub.Viewers("run-1"))
}

func TestHubUnregisterClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "run-1")

	hub.registerClient(client)
	hub.unregisterClient(client)

	_, exists := hub.runs["run-1"]
	assert.False(t, exists, "run entry should be removed after its last viewer leaves")

	_, open := <-client.send
	assert.False(t, open, "send channel should be closed")

	// A second unregister is a no-op.
	hub.unregisterClient(client)
}

func TestHubMultipleViewers(t *testing.T) {
	hub := newTestHub()
	c1 := newTestClient(hub, "shared")
	c2 := newTestClient(hub, "shared")
	other := newTestClient(hub, "other")

	hub.registerClient(c1)
	hub.registerClient(c2)
	hub.registerClient(other)
	assert.Equal(t, 2, hub.Viewers("shared"))

	hub.unregisterClient(c1)
	assert.Equal(t, 1, hub.Viewers("shared"))
	assert.True(t, hub.runs["shared"][c2])
	assert.Equal(t, 1, hub.Viewers("other"))
}

func TestHubBroadcastFrame(t *testing.T) {
	hub := newTestHub()
	viewer := newTestClient(hub, "run-7")
	bystander := newTestClient(hub, "run-8")
	hub.registerClient(viewer)
	hub.registerClient(bystander)

	frame := &service.Frame{
		Step:     2,
		Action:   "East",
		Position: maze.Position{Row: 1, Col: 3},
		Phase:    4,
		FoodLeft: 1,
		Board:    []string{"%%%%%", "%  P%", "%%%%%"},
	}
	hub.BroadcastFrame("run-7", frame)

	select {
	case data := <-viewer.send:
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		assert.Equal(t, "run-7", message.RunID)
		assert.Equal(t, EventFrame, message.Event)
		require.NotNil(t, message.Frame)
		assert.Equal(t, frame.Position, message.Frame.Position)
		assert.Equal(t, 4, message.Frame.Phase)
		assert.Equal(t, frame.Board, message.Frame.Board)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}

	select {
	case <-bystander.send:
		t.Error("Viewer of another run should not receive the frame")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := newTestHub()
	slow := &Client{hub: hub, runID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.BroadcastFrame("slow", &service.Frame{})

	assert.Equal(t, 0, hub.Viewers("slow"))
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := newTestHub()

	hub.BroadcastEvent("event-test", EventPlayback, "payload")

	select {
	case message := <-hub.broadcast:
		assert.Equal(t, "event-test", message.RunID)
		assert.Equal(t, EventPlayback, message.Event)
		assert.Equal(t, "payload", message.Data)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No broadcast message received within timeout")
	}
}

func TestHubLogsRegistration(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	hub := NewHub(logger)

	hub.registerClient(newTestClient(hub, "logged"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Client registered", entry.Message)
	assert.Equal(t, "logged", entry.Data["run_id"])
	assert.Equal(t, "websocket", entry.Data["component"])
}

func startTestServer(t *testing.T, hub *Hub) string {
	t.Helper()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("run"))
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := newTestHub()
	wsURL := startTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?run=ws-test", nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return hub.Viewers("ws-test") == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.Viewers("ws-test") == 0 },
		time.Second, 10*time.Millisecond)
}

func TestWebSocketReceivesFrames(t *testing.T) {
	hub := newTestHub()
	wsURL := startTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?run=msg-test", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Viewers("msg-test") == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastFrame("msg-test", &service.Frame{
		Step:     0,
		Position: maze.Position{Row: 1, Col: 1},
		FoodLeft: 2,
		PiesLeft: 1,
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	// Queued messages may be batched on separate lines.
	first := strings.SplitN(string(data), "\n", 2)[0]
	var message Message
	require.NoError(t, json.Unmarshal([]byte(first), &message))
	assert.Equal(t, "msg-test", message.RunID)
	require.NotNil(t, message.Frame)
	assert.Equal(t, 2, message.Frame.FoodLeft)
	assert.Equal(t, 1, message.Frame.PiesLeft)
}
