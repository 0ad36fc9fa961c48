package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	cellSize          = 24
	headerHeight      = 80
	screenWidth       = 800
	screenHeight      = 720
	defaultBaseURL    = "http://localhost:8080"
	animationDuration = 120 * time.Millisecond
	minStepDelay      = 50 * time.Millisecond
	maxStepDelay      = 2 * time.Second
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenReplay
)

// Run colors, one per loaded run
var runColors = []color.RGBA{
	{255, 220, 0, 255},   // Yellow
	{255, 100, 100, 255}, // Red
	{100, 160, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{180, 120, 255, 255}, // Purple
	{255, 192, 203, 255}, // Pink
}

// RunView holds the replay state of a single run
type RunView struct {
	runID    string
	replay   *Replay
	frame    int // index of the frame on screen
	live     *Frame
	wsConn   *websocket.Conn
	playing  bool
	lastStep time.Time

	prevPos       Position
	targetPos     Position
	moveStartTime time.Time
	animationTime float64 // 0.0 to 1.0
}

// current returns the frame on screen, preferring the live feed
func (v *RunView) current() *Frame {
	if v.live != nil {
		return v.live
	}
	if v.replay == nil || len(v.replay.Frames) == 0 {
		return nil
	}
	return &v.replay.Frames[v.frame]
}

// moveTo starts the slide from the frame on screen to f. Teleports jump.
func (v *RunView) moveTo(from, to *Frame) {
	if from == nil || manhattan(from.Position, to.Position) != 1 {
		v.prevPos, v.targetPos = to.Position, to.Position
		v.animationTime = 1.0
		return
	}
	v.prevPos = from.Position
	v.targetPos = to.Position
	v.moveStartTime = time.Now()
	v.animationTime = 0.0
}

func (v *RunView) seek(i int) {
	if v.replay == nil || len(v.replay.Frames) == 0 {
		return
	}
	i = max(0, min(i, len(v.replay.Frames)-1))
	from := v.current()
	v.live = nil
	v.frame = i
	v.moveTo(from, &v.replay.Frames[i])
	v.lastStep = time.Now()
}

// Viewer represents the desktop replay client
type Viewer struct {
	api         *apiClient
	runs        []*RunView
	activeRun   int
	stateMutex  sync.RWMutex
	screen      ScreenType
	welcome     *WelcomeScreen
	selectedIDs map[string]bool
	stepDelay   time.Duration
}

// WelcomeScreen manages the run selection screen
type WelcomeScreen struct {
	availableRuns    []RunListItem
	availableLayouts []LayoutListItem
	cursorPos        int
	loading          bool
	errorMsg         string
	solveLayout      string // layout to solve with N
}

// NewViewer creates a viewer; run IDs given up front skip the welcome screen
func NewViewer(api *apiClient, runIDs []string) *Viewer {
	v := &Viewer{
		api:         api,
		screen:      ScreenWelcome,
		welcome:     &WelcomeScreen{},
		selectedIDs: make(map[string]bool),
		stepDelay:   300 * time.Millisecond,
	}

	if len(runIDs) > 0 {
		for _, id := range runIDs {
			v.addRun(id)
		}
		v.screen = ScreenReplay
	} else {
		v.loadWelcomeData()
	}
	return v
}

// addRun loads a run's replay and subscribes to its live feed
func (v *Viewer) addRun(runID string) {
	replay, err := v.api.replay(runID)
	if err != nil {
		log.Printf("Failed to load replay of %s: %v", runID, err)
		return
	}

	view := &RunView{runID: replay.RunID, replay: replay, animationTime: 1.0}
	if len(replay.Frames) > 0 {
		view.prevPos = replay.Frames[0].Position
		view.targetPos = replay.Frames[0].Position
	}

	conn, err := v.api.dial(replay.RunID)
	if err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (local playback only)", replay.RunID, err)
	} else {
		view.wsConn = conn
		go v.listenWebSocket(view)
	}

	v.stateMutex.Lock()
	v.runs = append(v.runs, view)
	v.stateMutex.Unlock()
}

// listenWebSocket applies frames pushed by server-side playback
func (v *Viewer) listenWebSocket(view *RunView) {
	defer view.wsConn.Close()

	for {
		var msg WSMessage
		if err := view.wsConn.ReadJSON(&msg); err != nil {
			log.Printf("WebSocket read error for %s: %v", view.runID, err)
			v.stateMutex.Lock()
			view.wsConn = nil
			v.stateMutex.Unlock()
			return
		}

		switch msg.Event {
		case "frame":
			if msg.Frame == nil {
				continue
			}
			v.stateMutex.Lock()
			view.playing = false
			view.moveTo(view.current(), msg.Frame)
			view.live = msg.Frame
			if view.replay != nil && msg.Frame.Step < len(view.replay.Frames) {
				view.frame = msg.Frame.Step
			}
			v.stateMutex.Unlock()
		case "playback_started", "playback_finished":
			log.Printf("Run %s: %s", view.runID, msg.Event)
		}
	}
}

// loadWelcomeData fetches available runs and layouts from the server
func (v *Viewer) loadWelcomeData() {
	ws := v.welcome
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	runs, err := v.api.listRuns()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading runs: %v", err)
		return
	}
	ws.availableRuns = runs

	layouts, err := v.api.listLayouts()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading layouts: %v", err)
		return
	}
	ws.availableLayouts = layouts
}

// startReplay switches to the replay screen with the selected runs
func (v *Viewer) startReplay() {
	if len(v.selectedIDs) == 0 {
		v.welcome.errorMsg = "Please select at least one solved run"
		return
	}
	for id := range v.selectedIDs {
		v.addRun(id)
	}
	v.selectedIDs = make(map[string]bool)
	v.screen = ScreenReplay
}

// Update updates viewer logic
func (v *Viewer) Update() error {
	switch v.screen {
	case ScreenWelcome:
		return v.updateWelcomeScreen()
	case ScreenReplay:
		return v.updateReplayScreen()
	}
	return nil
}

func (v *Viewer) updateWelcomeScreen() error {
	ws := v.welcome

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		v.loadWelcomeData()
	}

	total := len(ws.availableRuns)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos = min(ws.cursorPos+1, max(total-1, 0))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos = max(ws.cursorPos-1, 0)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && ws.cursorPos < total {
		run := ws.availableRuns[ws.cursorPos]
		if run.Status != "solved" {
			ws.errorMsg = fmt.Sprintf("Run %s is %s and cannot be replayed", run.ID, run.Status)
		} else if v.selectedIDs[run.ID] {
			delete(v.selectedIDs, run.ID)
		} else {
			v.selectedIDs[run.ID] = true
		}
	}

	// Cycle through layouts with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableLayouts) > 0 {
		next := 0
		for i, l := range ws.availableLayouts {
			if l.LayoutID == ws.solveLayout {
				next = i + 1
				break
			}
		}
		if next >= len(ws.availableLayouts) {
			ws.solveLayout = "" // catalogue default
		} else {
			ws.solveLayout = ws.availableLayouts[next].LayoutID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		id, err := v.api.solve(ws.solveLayout)
		if err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to solve: %v", err)
		} else {
			v.selectedIDs[id] = true
			v.loadWelcomeData()
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.startReplay()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(v.runs) > 0 {
		v.screen = ScreenReplay
	}
	return nil
}

func (v *Viewer) updateReplayScreen() error {
	v.stateMutex.Lock()
	defer v.stateMutex.Unlock()

	if len(v.runs) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			v.screen = ScreenWelcome
		}
		return nil
	}

	for _, view := range v.runs {
		if view.animationTime < 1.0 {
			view.animationTime = math.Min(1.0, float64(time.Since(view.moveStartTime))/float64(animationDuration))
		}
		if view.playing && time.Since(view.lastStep) >= v.stepDelay {
			if view.frame+1 < len(view.replay.Frames) {
				view.seek(view.frame + 1)
			} else {
				view.playing = false
			}
		}
	}

	for k := ebiten.Key1; k <= ebiten.Key9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			if i := int(k - ebiten.Key1); i < len(v.runs) {
				v.activeRun = i
			}
		}
	}

	active := v.runs[v.activeRun]
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if !active.playing && active.frame+1 >= len(active.replay.Frames) {
			active.seek(0)
		}
		active.playing = !active.playing
		active.lastStep = time.Now()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		active.playing = false
		active.seek(active.frame + 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		active.playing = false
		active.seek(active.frame - 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		active.playing = false
		active.seek(0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		v.stepDelay = max(v.stepDelay/2, minStepDelay)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		v.stepDelay = min(v.stepDelay*2, maxStepDelay)
	}

	// Server-side playback reaches every viewer of the run
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if active.wsConn == nil {
			log.Printf("Run %s has no live feed", active.runID)
		} else if err := v.api.play(active.runID, v.stepDelay); err != nil {
			log.Printf("Failed to start playback of %s: %v", active.runID, err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		v.screen = ScreenWelcome
		v.loadWelcomeData()
	}
	return nil
}

// Draw renders the viewer
func (v *Viewer) Draw(screen *ebiten.Image) {
	switch v.screen {
	case ScreenWelcome:
		v.drawWelcomeScreen(screen)
	case ScreenReplay:
		v.drawReplayScreen(screen)
	}
}

func (v *Viewer) drawWelcomeScreen(screen *ebiten.Image) {
	ws := v.welcome
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== PACMAN PLANNER - RUN SELECT ===", 240, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading runs...", 20, y)
		return
	}
	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+ws.errorMsg, 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Runs:", 20, y)
	y += 20
	if len(ws.availableRuns) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No runs yet. Press N to solve a layout.", 20, y)
		y += 20
	}
	for i, run := range ws.availableRuns {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		checkbox := "[ ]"
		if v.selectedIDs[run.ID] {
			checkbox = "[X]"
		}
		line := fmt.Sprintf("%s%s %.8s | %s | %s | %s cost:%d expanded:%d",
			cursor, checkbox, run.ID, run.LayoutID, run.Heuristic, run.Status, run.Cost, run.Expanded)
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}

	y += 20
	layout := "default"
	if ws.solveLayout != "" {
		layout = ws.solveLayout
	}
	ebitenutil.DebugPrintAt(screen, "Layout to solve: "+layout, 20, y)
	y += 15
	for _, l := range ws.availableLayouts {
		marker := "  "
		if l.LayoutID == ws.solveLayout {
			marker = "→ "
		}
		line := fmt.Sprintf("    %s%s %dx%d food:%d pies:%d %s", marker, l.LayoutID, l.Width, l.Height, l.Food, l.Pies, l.Description)
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d run(s)", len(v.selectedIDs)), 20, y)
	y += 30
	for _, help := range []string{
		"CONTROLS:",
		"  ↑/↓      - Navigate runs",
		"  SPACE    - Toggle run selection",
		"  TAB      - Cycle layout to solve",
		"  N        - Solve the layout and select the new run",
		"  ENTER    - Replay selected runs",
		"  F5       - Refresh",
	} {
		ebitenutil.DebugPrintAt(screen, help, 20, y)
		y += 15
	}
}

func (v *Viewer) drawReplayScreen(screen *ebiten.Image) {
	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	if len(v.runs) == 0 {
		ebitenutil.DebugPrint(screen, "No runs loaded. Press ESC to go to run select.")
		return
	}

	v.drawRunStats(screen)

	view := v.runs[v.activeRun]
	frame := view.current()
	if frame == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	for r, row := range frame.Board {
		for c := 0; c < len(row); c++ {
			ebitenutil.DrawRect(screen,
				float64(c*cellSize),
				float64(r*cellSize+headerHeight),
				cellSize-1, cellSize-1, cellColor(row[c]))
			switch row[c] {
			case '.':
				drawDot(screen, r, c, 6, color.RGBA{255, 230, 200, 255})
			case 'O':
				drawDot(screen, r, c, 12, color.RGBA{255, 120, 200, 255})
			}
		}
	}

	// Trail of the cells already walked
	if view.replay != nil {
		runColor := runColors[v.activeRun%len(runColors)]
		for i := 0; i < view.frame && i < len(view.replay.Frames); i++ {
			age := float64(i+1) / float64(view.frame+1)
			trail := color.RGBA{runColor.R, runColor.G, runColor.B, uint8(age * 0.4 * 255)}
			p := view.replay.Frames[i].Position
			drawDot(screen, p.Row, p.Col, 6, trail)
		}
	}

	t := math.Min(view.animationTime, 1.0)
	x := float64(view.prevPos.Col)*(1.0-t) + float64(view.targetPos.Col)*t
	y := float64(view.prevPos.Row)*(1.0-t) + float64(view.targetPos.Row)*t

	pacColor := runColors[v.activeRun%len(runColors)]
	if frame.Phase > 0 {
		// Pulse while phasing through walls
		pulse := 0.5 + 0.5*math.Sin(float64(time.Now().UnixMilli())/80.0)
		pacColor.A = uint8(140 + 115*pulse)
	}
	ebitenutil.DrawRect(screen,
		x*cellSize+3,
		y*cellSize+headerHeight+3,
		cellSize-6, cellSize-6, pacColor)

	ebitenutil.DebugPrintAt(screen,
		"1-9: Switch Run | SPACE: Play/Pause | ←/→: Step | R: Restart | +/-: Speed | P: Server Playback | ESC: Menu",
		10, screenHeight-20)
}

func (v *Viewer) drawRunStats(screen *ebiten.Image) {
	for idx, view := range v.runs {
		y := 5 + idx*15
		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, runColors[idx%len(runColors)])

		marker := ""
		if idx == v.activeRun {
			marker = ">>>"
		}
		conn := "LOCAL"
		if view.wsConn != nil {
			conn = "WS"
		}

		info := fmt.Sprintf("%s [%d] %.8s %s [%s]", marker, idx+1, view.runID, view.replay.LayoutID, conn)
		if f := view.current(); f != nil {
			last := len(view.replay.Frames) - 1
			info += fmt.Sprintf(" STEP:%d/%d %s FOOD:%d PIES:%d", f.Step, last, f.Action, f.FoodLeft, f.PiesLeft)
			if f.Phase > 0 {
				info += fmt.Sprintf(" PHASE:%d", f.Phase)
			}
			if f.Step == last {
				info += fmt.Sprintf(" DONE cost %d", view.replay.Cost)
			}
		}
		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the viewer screen size
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func drawDot(screen *ebiten.Image, row, col int, size float64, c color.Color) {
	x := float64(col*cellSize) + cellSize/2 - size/2
	y := float64(row*cellSize+headerHeight) + cellSize/2 - size/2
	ebitenutil.DrawRect(screen, x, y, size, size, c)
}

// cellColor returns the background color of a board symbol
func cellColor(symbol byte) color.Color {
	switch symbol {
	case '%':
		return color.RGBA{30, 40, 160, 255} // Blue for walls
	case '~':
		return color.RGBA{90, 100, 200, 120} // Faded for vanished walls
	default:
		return color.RGBA{10, 10, 10, 255}
	}
}

func manhattan(a, b Position) int {
	dr, dc := a.Row-b.Row, a.Col-b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

func main() {
	baseURL := os.Getenv("PACMAN_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	flag.StringVar(&baseURL, "api", baseURL, "planner API base URL")
	flag.Parse()

	viewer := NewViewer(newAPIClient(baseURL), flag.Args())

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Pacman Planner - Replay Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
