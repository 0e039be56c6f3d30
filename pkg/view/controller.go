package view

import (
	"math"

	"github.com/topoview/topoview/pkg/topo"
)

// =============================================================================
// Options
// =============================================================================

// Default interaction tuning, in screen units.
const (
	DefaultClickThreshold = 4.0
	DefaultHitRadius      = 16.0
)

// Options configures the interaction controller.
type Options struct {
	// Canvas bounds node drags, matching the layout engine's canvas.
	Canvas topo.Rect

	// ZoomMin and ZoomMax clamp the zoom factor.
	ZoomMin float64
	ZoomMax float64

	// ClickThreshold is the screen-space travel below which a down/up pair
	// counts as a click rather than a drag.
	ClickThreshold float64

	// HitRadius is the screen-space radius within which a pointer-down
	// grabs a node.
	HitRadius float64
}

func (o Options) withDefaults() Options {
	if o.Canvas == (topo.Rect{}) {
		o.Canvas = topo.Rect{MinX: 0, MinY: 0, MaxX: 1200, MaxY: 800}
	}
	if o.ZoomMin == 0 {
		o.ZoomMin = DefaultZoomMin
	}
	if o.ZoomMax == 0 {
		o.ZoomMax = DefaultZoomMax
	}
	if o.ClickThreshold == 0 {
		o.ClickThreshold = DefaultClickThreshold
	}
	if o.HitRadius == 0 {
		o.HitRadius = DefaultHitRadius
	}
	return o
}

// =============================================================================
// Controller
// =============================================================================

// Controller is the gesture state machine that mutates a ViewState in
// response to normalized pointer events.
//
// Pointer-down on a node starts a drag; pointer-down on empty canvas starts
// a pan. The two are mutually exclusive per pointer. Dragged positions are
// clamped to the canvas and committed to the remembered-position map on
// every move, so a refresh arriving mid-drag already sees the latest
// position. A down/up pair that travels less than the click threshold is a
// click: on a node it toggles the selection, on empty canvas it clears it.
type Controller struct {
	state *ViewState
	opts  Options

	nodes    []topo.PlacedNode
	gestures map[int]*DragState
}

// NewController creates a controller bound to the given view state.
func NewController(state *ViewState, opts Options) *Controller {
	return &Controller{
		state:    state,
		opts:     opts.withDefaults(),
		gestures: make(map[int]*DragState),
	}
}

// SetFrame replaces the placed nodes used for hit-testing. Called by the UI
// whenever a new frame arrives from the refresh pipeline.
func (c *Controller) SetFrame(nodes []topo.PlacedNode) {
	c.nodes = nodes
}

// State returns the view state the controller mutates.
func (c *Controller) State() *ViewState {
	return c.state
}

// Handle feeds one pointer event through the state machine.
func (c *Controller) Handle(ev PointerEvent) {
	switch ev.Phase {
	case PhaseDown:
		c.handleDown(ev)
	case PhaseMove:
		c.handleMove(ev)
	case PhaseUp:
		c.handleUp(ev)
	case PhaseCancel:
		delete(c.gestures, ev.ID)
	}

	if g, ok := c.gestures[ev.ID]; ok {
		c.state.Drag = *g
	} else {
		c.state.Drag = DragState{}
	}
}

func (c *Controller) handleDown(ev PointerEvent) {
	g := &DragState{StartScreen: ev.Screen()}

	if hit := c.hitTest(ev.Screen()); hit != "" {
		g.Kind = GestureDragging
		g.NodeID = hit
		grabLayout := c.state.Transform().ToLayout(ev.Screen())
		nodePos := c.nodePosition(hit)
		g.GrabOffset = topo.Point{X: nodePos.X - grabLayout.X, Y: nodePos.Y - grabLayout.Y}
	} else {
		g.Kind = GesturePanning
		g.PanOrigin = c.state.Pan
	}
	c.gestures[ev.ID] = g
}

func (c *Controller) handleMove(ev PointerEvent) {
	g, ok := c.gestures[ev.ID]
	if !ok || g.Kind == GestureIdle {
		return
	}

	if travel(g.StartScreen, ev.Screen()) > c.opts.ClickThreshold {
		g.Moved = true
	}

	switch g.Kind {
	case GestureDragging:
		// A sub-threshold wiggle is still a click: committing a position
		// here would silently convert a layout-computed position into a
		// remembered one on every selection.
		if !g.Moved {
			return
		}
		p := c.state.Transform().ToLayout(ev.Screen())
		pos := c.opts.Canvas.Clamp(topo.Point{X: p.X + g.GrabOffset.X, Y: p.Y + g.GrabOffset.Y})
		c.state.Positions[g.NodeID] = pos
		for i := range c.nodes {
			if c.nodes[i].ID == g.NodeID {
				c.nodes[i].Pos = pos
			}
		}
	case GesturePanning:
		c.state.Pan = topo.Point{
			X: g.PanOrigin.X + ev.X - g.StartScreen.X,
			Y: g.PanOrigin.Y + ev.Y - g.StartScreen.Y,
		}
	}
}

func (c *Controller) handleUp(ev PointerEvent) {
	g, ok := c.gestures[ev.ID]
	if !ok {
		return
	}
	delete(c.gestures, ev.ID)

	if g.Moved {
		return
	}

	// Click: toggle selection on a node, clear it on empty canvas.
	switch g.Kind {
	case GestureDragging:
		if c.state.SelectedID == g.NodeID {
			c.state.SelectedID = ""
		} else {
			c.state.SelectedID = g.NodeID
		}
	case GesturePanning:
		c.state.SelectedID = ""
	}
}

// ZoomBy multiplies the zoom factor, clamped to the configured bounds, and
// adjusts pan so the anchor screen point keeps its layout position. Zoom is
// independent of any in-flight gesture.
func (c *Controller) ZoomBy(factor float64, anchor topo.Point) {
	if factor == 1 || factor <= 0 {
		return
	}
	next := c.state.Zoom * factor
	if next < c.opts.ZoomMin {
		next = c.opts.ZoomMin
	}
	if next > c.opts.ZoomMax {
		next = c.opts.ZoomMax
	}
	if next == c.state.Zoom {
		return
	}

	scale := next / c.state.Zoom
	c.state.Pan = topo.Point{
		X: anchor.X - (anchor.X-c.state.Pan.X)*scale,
		Y: anchor.Y - (anchor.Y-c.state.Pan.Y)*scale,
	}
	c.state.Zoom = next
}

// hitTest returns the id of the nearest visible node within the hit radius
// of the screen point, or "" when nothing is under the pointer.
func (c *Controller) hitTest(screen topo.Point) string {
	tr := c.state.Transform()

	best := ""
	bestDist := c.opts.HitRadius
	for i := range c.nodes {
		if c.nodes[i].Hidden {
			continue
		}
		d := travel(tr.ToScreen(c.nodes[i].Pos), screen)
		if d <= bestDist {
			best = c.nodes[i].ID
			bestDist = d
		}
	}
	return best
}

// nodePosition returns the effective layout position of a node: remembered
// if the user dragged it, otherwise the frame position.
func (c *Controller) nodePosition(id string) topo.Point {
	if p, ok := c.state.Positions[id]; ok {
		return p
	}
	for i := range c.nodes {
		if c.nodes[i].ID == id {
			return c.nodes[i].Pos
		}
	}
	return topo.Point{}
}

func travel(a, b topo.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
