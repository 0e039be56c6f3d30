package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/topoview/topoview/pkg/pipeline"
	"github.com/topoview/topoview/pkg/source"
	"github.com/topoview/topoview/pkg/store"
	"github.com/topoview/topoview/pkg/topo"
	"github.com/topoview/topoview/pkg/topo/filter"
	"github.com/topoview/topoview/pkg/view"
)

type stubProvider struct{}

func (stubProvider) Fetch(ctx context.Context) (source.Payload, error) {
	return source.Payload{
		Router: &source.RouterInfo{Model: "RT-AX88U", IsOnline: true},
	}, nil
}

func testFrame() *pipeline.Frame {
	nodes := []topo.Node{
		{ID: topo.RootID, Name: "Router", Kind: topo.KindRoot, Online: true},
		{ID: "d1", Name: "laptop", Kind: topo.KindClientDevice, Online: true,
			Medium: topo.MediumWireless, Meta: topo.NodeMeta{IPAddress: "192.168.1.20", DownloadRate: 12}},
	}
	edges := []topo.Edge{{From: topo.RootID, To: "d1", Medium: topo.MediumWireless}}
	return &pipeline.Frame{
		Generation: 1,
		Snapshot:   topo.Snapshot{Nodes: nodes, Edges: edges},
		Placed: []topo.PlacedNode{
			{Node: nodes[0], Pos: topo.Point{X: 600, Y: 400}},
			{Node: nodes[1], Pos: topo.Point{X: 100, Y: 100}},
		},
		Edges: edges,
		Stats: filter.Stats{TotalDevices: 1, VisibleDevices: 1, OnlineDevices: 1},
	}
}

func newTestDashboard(t *testing.T) (DashboardModel, store.Store) {
	t.Helper()
	runner, err := pipeline.NewRunner(stubProvider{}, pipeline.Options{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	saves := store.NewMemoryStore()
	m := NewDashboard(runner, make(chan *pipeline.Frame), saves, "default", nil, view.Options{
		Canvas:  topo.Rect{MaxX: 1200, MaxY: 800},
		ZoomMin: 0.3,
		ZoomMax: 3.0,
	}, &sharedView{})
	return m, saves
}

func update(t *testing.T, m DashboardModel, msg tea.Msg) (DashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	dash, ok := next.(DashboardModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return dash, cmd
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestDashboardShowsConnectingBeforeFirstFrame(t *testing.T) {
	m, _ := newTestDashboard(t)
	if !strings.Contains(m.View(), "connecting") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestDashboardRendersFrame(t *testing.T) {
	m, _ := newTestDashboard(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, frameMsg{frame: testFrame()})

	out := m.View()
	if !strings.Contains(out, "1/1 devices") {
		t.Errorf("status bar missing counters:\n%s", out)
	}
	if !strings.Contains(out, "laptop") {
		t.Errorf("device label not rendered:\n%s", out)
	}
}

func TestDashboardQuitKey(t *testing.T) {
	m, _ := newTestDashboard(t)
	_, cmd := update(t, m, keyMsg("q"))
	if cmd == nil {
		t.Fatal("no command for quit key")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("quit key produced %T", cmd())
	}
}

func TestDashboardZoomKeys(t *testing.T) {
	m, _ := newTestDashboard(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, frameMsg{frame: testFrame()})

	m, _ = update(t, m, keyMsg("+"))
	if m.state.Zoom <= 1 {
		t.Errorf("zoom = %v after +", m.state.Zoom)
	}
	m, _ = update(t, m, keyMsg("0"))
	if m.state.Zoom != 1 || m.state.Pan != (topo.Point{}) {
		t.Errorf("reset key left zoom=%v pan=%v", m.state.Zoom, m.state.Pan)
	}
}

func TestDashboardSaveKey(t *testing.T) {
	m, saves := newTestDashboard(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, frameMsg{frame: testFrame()})

	m, _ = update(t, m, keyMsg("s"))
	if !strings.Contains(m.status, "saved") {
		t.Errorf("status = %q", m.status)
	}
	if _, err := saves.Get(context.Background(), "default"); err != nil {
		t.Errorf("layout not persisted: %v", err)
	}
}

func TestDashboardMouseDragMovesNode(t *testing.T) {
	m, _ := newTestDashboard(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, frameMsg{frame: testFrame()})

	// d1 sits at layout (100,100); with the 120x38 window fit the cell
	// under it is (5,5).
	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 8, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 8, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	pos, ok := m.state.Positions["d1"]
	if !ok {
		t.Fatal("drag did not commit a position")
	}
	if pos.X <= 100 {
		t.Errorf("node did not move right: %v", pos)
	}
	// The poll goroutine sees the dragged position.
	if _, ok := m.shared.Remembered()["d1"]; !ok {
		t.Error("dragged position not published to refreshes")
	}
}

func TestDashboardWheelZooms(t *testing.T) {
	m, _ := newTestDashboard(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, frameMsg{frame: testFrame()})

	m, _ = update(t, m, tea.MouseMsg{X: 60, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if m.state.Zoom <= 1 {
		t.Errorf("zoom = %v after wheel up", m.state.Zoom)
	}
}

func TestDashboardViewportPublished(t *testing.T) {
	m, _ := newTestDashboard(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	vp := m.shared.Viewport()
	if vp == nil {
		t.Fatal("no viewport after window size")
	}
	if vp.MaxX <= vp.MinX || vp.MaxY <= vp.MinY {
		t.Errorf("degenerate viewport %+v", vp)
	}
}

func TestSharedViewCopies(t *testing.T) {
	s := &sharedView{}
	s.update(map[string]topo.Point{"d1": {X: 1}}, &topo.Rect{MaxX: 10, MaxY: 10})

	got := s.Remembered()
	got["d1"] = topo.Point{X: 99}
	if s.Remembered()["d1"].X != 1 {
		t.Error("Remembered returned shared map")
	}

	vp := s.Viewport()
	vp.MaxX = 99
	if s.Viewport().MaxX != 10 {
		t.Error("Viewport returned shared rect")
	}
}
