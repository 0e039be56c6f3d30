package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/topoview/topoview/pkg/pipeline"
	"github.com/topoview/topoview/pkg/render"
	"github.com/topoview/topoview/pkg/store"
	"github.com/topoview/topoview/pkg/topo"
	"github.com/topoview/topoview/pkg/view"
)

// statusBarHeight is the number of rows reserved below the canvas.
const statusBarHeight = 2

// =============================================================================
// Shared View State
// =============================================================================

// sharedView hands the latest interaction state to the poll goroutine.
// Refreshes read remembered positions and the viewport from here, so a
// refresh never resets what the user dragged.
type sharedView struct {
	mu         sync.Mutex
	remembered map[string]topo.Point
	viewport   *topo.Rect
}

func (s *sharedView) update(remembered map[string]topo.Point, viewport *topo.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remembered = remembered
	s.viewport = viewport
}

// Remembered returns a copy safe to hand to a refresh cycle.
func (s *sharedView) Remembered() map[string]topo.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]topo.Point, len(s.remembered))
	for id, p := range s.remembered {
		out[id] = p
	}
	return out
}

// Viewport returns the current layout-space viewport, or nil before the
// first window size is known.
func (s *sharedView) Viewport() *topo.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewport == nil {
		return nil
	}
	vp := *s.viewport
	return &vp
}

// =============================================================================
// Messages
// =============================================================================

type frameMsg struct {
	frame *pipeline.Frame
}

type sourceClosedMsg struct{}

// waitForFrame blocks on the poll channel and delivers the next frame.
func waitForFrame(frames <-chan *pipeline.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return sourceClosedMsg{}
		}
		return frameMsg{frame: f}
	}
}

// =============================================================================
// DashboardModel
// =============================================================================

// DashboardModel is the bubbletea model for the interactive topology view.
//
// Layout coordinates are mapped to terminal cells in two stages: the view
// transform (zoom and pan, owned by the interaction controller) maps layout
// space to screen space, and a window-fit scale maps screen space to cells.
// Mouse events go through the inverse of the same two stages, so a drag in
// cells lands on the node under the cursor regardless of window size.
type DashboardModel struct {
	runner *pipeline.Runner
	state  *view.ViewState
	ctrl   *view.Controller
	shared *sharedView
	frames <-chan *pipeline.Frame
	saves  store.Store

	layoutName string
	canvas     topo.Rect

	frame  *pipeline.Frame
	term   *render.Terminal
	width  int
	height int
	status string
}

// NewDashboard creates the dashboard model. A previously saved layout seeds
// positions, zoom and pan; nil starts from the computed layout.
func NewDashboard(runner *pipeline.Runner, frames <-chan *pipeline.Frame, saves store.Store,
	layoutName string, seed *store.Save, opts view.Options, shared *sharedView) DashboardModel {

	state := view.NewViewState()
	if seed != nil {
		for id, p := range seed.Positions {
			state.Positions[id] = p
		}
		if seed.Zoom != 0 {
			state.Zoom = seed.Zoom
		}
		state.Pan = seed.Pan
	}

	return DashboardModel{
		runner:     runner,
		state:      state,
		ctrl:       view.NewController(state, opts),
		shared:     shared,
		frames:     frames,
		saves:      saves,
		layoutName: layoutName,
		canvas:     opts.Canvas,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if factor := view.WheelZoom(msg); factor != 1 {
			m.ctrl.ZoomBy(factor, m.toCanonical(msg.X, msg.Y))
		} else if ev, ok := view.FromMouse(msg); ok {
			p := m.toCanonical(msg.X, msg.Y)
			ev.X, ev.Y = p.X, p.Y
			m.ctrl.Handle(ev)
		}
		m.syncShared()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		rows := msg.Height - statusBarHeight
		if rows < 1 {
			rows = 1
		}
		m.term = render.NewTerminal(msg.Width, rows)
		m.syncShared()
		return m, nil

	case frameMsg:
		m.frame = msg.frame
		m.state.Prune(msg.frame.Snapshot)
		m.ctrl.SetFrame(msg.frame.Placed)
		m.syncShared()
		return m, waitForFrame(m.frames)

	case sourceClosedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "+", "=":
		m.ctrl.ZoomBy(view.WheelDelta, m.canvas.Center())
	case "-":
		m.ctrl.ZoomBy(1/view.WheelDelta, m.canvas.Center())
	case "0":
		m.state.Zoom = 1
		m.state.Pan = topo.Point{}
	case "esc":
		m.state.SelectedID = ""
	case "s":
		m.status = m.saveLayout()
	case "r":
		m.syncShared()
		return m, m.refreshNow()
	}
	m.syncShared()
	return m, nil
}

// refreshNow forces an immediate refresh outside the poll schedule.
func (m DashboardModel) refreshNow() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		f, err := m.runner.Refresh(ctx, m.shared.Remembered(), m.shared.Viewport())
		if err != nil {
			// Superseded or failed; the poll loop keeps the view fresh.
			return nil
		}
		return frameMsg{frame: f}
	}
}

// saveLayout persists positions, zoom and pan under the configured name.
func (m *DashboardModel) saveLayout() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	save := &store.Save{
		Name:      m.layoutName,
		Positions: m.shared.Remembered(),
		Zoom:      m.state.Zoom,
		Pan:       m.state.Pan,
	}
	if err := m.saves.Put(ctx, save); err != nil {
		return "save failed: " + err.Error()
	}
	return fmt.Sprintf("layout %q saved", m.layoutName)
}

// =============================================================================
// Coordinate Mapping
// =============================================================================

// fitScale maps canonical screen units to terminal cells.
func (m DashboardModel) fitScale() float64 {
	w := m.canvas.MaxX - m.canvas.MinX
	h := m.canvas.MaxY - m.canvas.MinY
	if m.width == 0 || w <= 0 || h <= 0 {
		return 1
	}
	rows := float64(m.height - statusBarHeight)
	if rows < 1 {
		rows = 1
	}
	sx := float64(m.width) / w
	sy := rows / h
	if sx < sy {
		return sx
	}
	return sy
}

// toCanonical converts a cell coordinate to canonical screen space.
func (m DashboardModel) toCanonical(cellX, cellY int) topo.Point {
	fit := m.fitScale()
	return topo.Point{X: float64(cellX) / fit, Y: float64(cellY) / fit}
}

// displayTransform composes zoom/pan with the window-fit scale.
func (m DashboardModel) displayTransform() view.Transform {
	tr := m.state.Transform()
	fit := m.fitScale()
	return view.Transform{
		Zoom: tr.Zoom * fit,
		Pan:  topo.Point{X: tr.Pan.X * fit, Y: tr.Pan.Y * fit},
	}
}

// layoutViewport returns the layout-space rectangle currently on screen.
func (m DashboardModel) layoutViewport() *topo.Rect {
	if m.width == 0 {
		return nil
	}
	tr := m.state.Transform()
	fit := m.fitScale()
	rows := float64(m.height - statusBarHeight)
	lo := tr.ToLayout(topo.Point{})
	hi := tr.ToLayout(topo.Point{X: float64(m.width) / fit, Y: rows / fit})
	return &topo.Rect{MinX: lo.X, MinY: lo.Y, MaxX: hi.X, MaxY: hi.Y}
}

// syncShared publishes remembered positions and the viewport for the next
// refresh cycle.
func (m DashboardModel) syncShared() {
	positions := make(map[string]topo.Point, len(m.state.Positions))
	for id, p := range m.state.Positions {
		positions[id] = p
	}
	m.shared.update(positions, m.layoutViewport())
}

// =============================================================================
// View
// =============================================================================

func (m DashboardModel) View() string {
	if m.term == nil || m.frame == nil {
		return StyleDim.Render("connecting to router…")
	}

	scene := render.BuildScene(m.frame.Placed, m.frame.Edges, m.state.SelectedID, m.displayTransform())
	var b strings.Builder
	b.WriteString(m.term.Render(scene))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

// statusBar renders counters, zoom, selection details and transient status.
func (m DashboardModel) statusBar() string {
	stats := m.frame.Stats
	parts := []string{
		fmt.Sprintf("%d/%d devices", stats.VisibleDevices, stats.TotalDevices),
		fmt.Sprintf("%d online", stats.OnlineDevices),
		fmt.Sprintf("zoom %d%%", int(m.state.Zoom*100+0.5)),
	}
	if stats.HiddenByView > 0 {
		parts = append(parts, fmt.Sprintf("%d off-screen", stats.HiddenByView))
	}
	line := StyleDim.Render(strings.Join(parts, " · "))
	if m.frame.SourceErr != nil {
		line += "  " + StyleWarning.Render("! partial data")
	}
	if m.status != "" {
		line += "  " + StyleSuccess.Render(m.status)
	}

	detail := StyleDim.Render("drag: move node · wheel: zoom · r: refresh · s: save · q: quit")
	if n := m.frame.Snapshot.NodeByID(m.state.SelectedID); n != nil {
		fields := []string{n.Name, n.Medium.String()}
		if n.Meta.IPAddress != "" {
			fields = append(fields, n.Meta.IPAddress)
		}
		if n.Meta.MACAddress != "" {
			fields = append(fields, n.Meta.MACAddress)
		}
		if rate := n.TrafficRate(); rate > 0 {
			fields = append(fields, fmt.Sprintf("%.1f Mbps", rate))
		}
		if !n.Online {
			fields = append(fields, StyleWarning.Render("offline"))
		}
		detail = StyleValue.Render(strings.Join(fields, " · "))
	}

	return line + "\n" + detail
}
