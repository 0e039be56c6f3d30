package view

import (
	"math"
	"testing"

	"github.com/topoview/topoview/pkg/topo"
)

func testFrame() []topo.PlacedNode {
	return []topo.PlacedNode{
		{Node: topo.Node{ID: topo.RootID, Kind: topo.KindRoot}, Pos: topo.Point{X: 600, Y: 400}},
		{Node: topo.Node{ID: "d1", Kind: topo.KindClientDevice}, Pos: topo.Point{X: 100, Y: 100}},
		{Node: topo.Node{ID: "d2", Kind: topo.KindClientDevice}, Pos: topo.Point{X: 300, Y: 300}},
	}
}

func newTestController() *Controller {
	c := NewController(NewViewState(), Options{})
	c.SetFrame(testFrame())
	return c
}

func TestDragCommitsPosition(t *testing.T) {
	c := newTestController()

	c.Handle(PointerEvent{X: 100, Y: 100, Phase: PhaseDown})
	if c.State().Drag.Kind != GestureDragging || c.State().Drag.NodeID != "d1" {
		t.Fatalf("down on node: drag state = %+v", c.State().Drag)
	}

	c.Handle(PointerEvent{X: 150, Y: 130, Phase: PhaseMove})
	got, ok := c.State().Positions["d1"]
	if !ok {
		t.Fatal("dragged position not committed to remembered map")
	}
	want := topo.Point{X: 150, Y: 130}
	if got != want {
		t.Errorf("position = %v, want %v", got, want)
	}

	c.Handle(PointerEvent{X: 150, Y: 130, Phase: PhaseUp})
	if c.State().Drag.Kind != GestureIdle {
		t.Errorf("gesture not idle after up: %+v", c.State().Drag)
	}
	if c.State().SelectedID != "" {
		t.Errorf("drag selected node %q", c.State().SelectedID)
	}
}

func TestDragPreservesGrabOffset(t *testing.T) {
	c := newTestController()

	// Grab 5 units off-center; the node must keep that offset while moving.
	c.Handle(PointerEvent{X: 105, Y: 100, Phase: PhaseDown})
	c.Handle(PointerEvent{X: 205, Y: 150, Phase: PhaseMove})

	want := topo.Point{X: 200, Y: 150}
	if got := c.State().Positions["d1"]; got != want {
		t.Errorf("position = %v, want %v", got, want)
	}
}

func TestDragClampedToCanvas(t *testing.T) {
	c := newTestController()

	c.Handle(PointerEvent{X: 100, Y: 100, Phase: PhaseDown})
	c.Handle(PointerEvent{X: -500, Y: 9000, Phase: PhaseMove})

	got := c.State().Positions["d1"]
	if got.X < 0 || got.Y > 800 {
		t.Errorf("dragged position %v escaped canvas", got)
	}
	if got != (topo.Point{X: 0, Y: 800}) {
		t.Errorf("position = %v, want clamped corner {0 800}", got)
	}
}

func TestDragSurvivesCancel(t *testing.T) {
	c := newTestController()

	c.Handle(PointerEvent{X: 100, Y: 100, Phase: PhaseDown})
	c.Handle(PointerEvent{X: 200, Y: 200, Phase: PhaseMove})
	c.Handle(PointerEvent{Phase: PhaseCancel})

	if c.State().Drag.Kind != GestureIdle {
		t.Errorf("gesture not idle after cancel: %+v", c.State().Drag)
	}
	// Moves are committed eagerly, so the last position sticks.
	if got := c.State().Positions["d1"]; got != (topo.Point{X: 200, Y: 200}) {
		t.Errorf("position after cancel = %v", got)
	}
}

func TestPanOnEmptyCanvas(t *testing.T) {
	c := newTestController()

	c.Handle(PointerEvent{X: 500, Y: 500, Phase: PhaseDown})
	if c.State().Drag.Kind != GesturePanning {
		t.Fatalf("down on empty canvas: drag state = %+v", c.State().Drag)
	}

	c.Handle(PointerEvent{X: 520, Y: 490, Phase: PhaseMove})
	if got := c.State().Pan; got != (topo.Point{X: 20, Y: -10}) {
		t.Errorf("pan = %v, want {20 -10}", got)
	}

	// Panning must not invent remembered positions.
	if len(c.State().Positions) != 0 {
		t.Errorf("pan polluted position map: %v", c.State().Positions)
	}
}

func TestClickTogglesSelection(t *testing.T) {
	c := newTestController()

	click := func(x, y float64) {
		c.Handle(PointerEvent{X: x, Y: y, Phase: PhaseDown})
		c.Handle(PointerEvent{X: x, Y: y, Phase: PhaseUp})
	}

	click(300, 300)
	if c.State().SelectedID != "d2" {
		t.Fatalf("selected = %q, want d2", c.State().SelectedID)
	}

	click(300, 300)
	if c.State().SelectedID != "" {
		t.Errorf("second click did not deselect: %q", c.State().SelectedID)
	}

	click(300, 300)
	click(500, 500) // empty canvas
	if c.State().SelectedID != "" {
		t.Errorf("canvas click did not clear selection: %q", c.State().SelectedID)
	}
}

func TestClickWithTinyMoveKeepsLayoutPosition(t *testing.T) {
	c := newTestController()

	// Pointer wobble under the click threshold is still a click: the node
	// must not acquire a remembered position.
	c.Handle(PointerEvent{X: 300, Y: 300, Phase: PhaseDown})
	c.Handle(PointerEvent{X: 301, Y: 301, Phase: PhaseMove})
	c.Handle(PointerEvent{X: 301, Y: 301, Phase: PhaseUp})

	if pos, ok := c.State().Positions["d2"]; ok {
		t.Errorf("sub-threshold move committed position %v", pos)
	}
	if c.State().SelectedID != "d2" {
		t.Errorf("selected = %q, want d2 (wobbly click still selects)", c.State().SelectedID)
	}
}

func TestMovedDragDoesNotSelect(t *testing.T) {
	c := newTestController()

	c.Handle(PointerEvent{X: 300, Y: 300, Phase: PhaseDown})
	c.Handle(PointerEvent{X: 350, Y: 300, Phase: PhaseMove})
	c.Handle(PointerEvent{X: 350, Y: 300, Phase: PhaseUp})

	if c.State().SelectedID != "" {
		t.Errorf("drag toggled selection: %q", c.State().SelectedID)
	}
}

func TestHitTestSkipsHiddenNodes(t *testing.T) {
	c := newTestController()
	frame := testFrame()
	frame[1].Hidden = true
	c.SetFrame(frame)

	c.Handle(PointerEvent{X: 100, Y: 100, Phase: PhaseDown})
	if c.State().Drag.Kind != GesturePanning {
		t.Errorf("hidden node grabbed: %+v", c.State().Drag)
	}
}

func TestZoomClampedToBounds(t *testing.T) {
	c := newTestController()
	anchor := topo.Point{X: 0, Y: 0}

	for i := 0; i < 100; i++ {
		c.ZoomBy(1.5, anchor)
	}
	if got := c.State().Zoom; got != DefaultZoomMax {
		t.Errorf("zoom = %v, want clamped to %v", got, DefaultZoomMax)
	}

	for i := 0; i < 100; i++ {
		c.ZoomBy(0.5, anchor)
	}
	if got := c.State().Zoom; got != DefaultZoomMin {
		t.Errorf("zoom = %v, want clamped to %v", got, DefaultZoomMin)
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	c := newTestController()
	c.State().Pan = topo.Point{X: 30, Y: -10}
	anchor := topo.Point{X: 200, Y: 150}

	before := c.State().Transform().ToLayout(anchor)
	c.ZoomBy(1.4, anchor)
	after := c.State().Transform().ToLayout(anchor)

	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Errorf("anchor layout point drifted: %v -> %v", before, after)
	}
}

func TestZoomDuringDrag(t *testing.T) {
	c := newTestController()

	c.Handle(PointerEvent{X: 100, Y: 100, Phase: PhaseDown})
	c.ZoomBy(2, topo.Point{X: 0, Y: 0})
	if c.State().Zoom != 2 {
		t.Errorf("zoom = %v, want 2 (independent of drag state)", c.State().Zoom)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{Zoom: 1.7, Pan: topo.Point{X: -42, Y: 13}}
	p := topo.Point{X: 123.4, Y: 567.8}

	back := tr.ToLayout(tr.ToScreen(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Errorf("round trip %v -> %v", p, back)
	}
}

func TestPruneDropsDepartedNodes(t *testing.T) {
	s := NewViewState()
	s.Positions["gone"] = topo.Point{X: 1, Y: 2}
	s.Positions["d1"] = topo.Point{X: 3, Y: 4}
	s.SelectedID = "gone"

	snap := topo.Snapshot{Nodes: []topo.Node{
		{ID: topo.RootID, Kind: topo.KindRoot},
		{ID: "d1", Kind: topo.KindClientDevice},
	}}
	s.Prune(snap)

	if _, ok := s.Positions["gone"]; ok {
		t.Error("departed node position survived prune")
	}
	if _, ok := s.Positions["d1"]; !ok {
		t.Error("present node position pruned")
	}
	if s.SelectedID != "" {
		t.Errorf("selection of departed node survived: %q", s.SelectedID)
	}
}
