// Package view holds the UI-session state of the topology visualizer and
// the interaction controller that mutates it.
//
// All state is explicit: one mutable ViewState owns dragged positions,
// pan/zoom, selection and the current gesture. The refresh pipeline reads
// the remembered-position map out of it each cycle and the render adapter
// reads the transform; nothing is hidden in framework-managed state.
package view

import (
	"github.com/topoview/topoview/pkg/topo"
)

// Default zoom bounds, used when the configuration does not override them.
const (
	DefaultZoomMin = 0.3
	DefaultZoomMax = 3.0
)

// =============================================================================
// Transform
// =============================================================================

// Transform maps between screen coordinates and layout-space. Zoom and pan
// combine multiplicatively: screen = layout*zoom + pan.
type Transform struct {
	Zoom float64    `json:"zoom"`
	Pan  topo.Point `json:"pan"`
}

// ToLayout converts a screen point to layout-space.
func (t Transform) ToLayout(p topo.Point) topo.Point {
	return topo.Point{
		X: (p.X - t.Pan.X) / t.Zoom,
		Y: (p.Y - t.Pan.Y) / t.Zoom,
	}
}

// ToScreen converts a layout-space point to screen coordinates.
func (t Transform) ToScreen(p topo.Point) topo.Point {
	return topo.Point{
		X: p.X*t.Zoom + t.Pan.X,
		Y: p.Y*t.Zoom + t.Pan.Y,
	}
}

// =============================================================================
// Drag State
// =============================================================================

// GestureKind discriminates the drag-state variant.
type GestureKind int

// Gesture kinds. Dragging and panning are mutually exclusive per pointer.
const (
	GestureIdle GestureKind = iota
	GestureDragging
	GesturePanning
)

// DragState describes the in-flight gesture of one pointer.
type DragState struct {
	Kind GestureKind

	// Dragging
	NodeID     string     // node being dragged
	GrabOffset topo.Point // node position minus pointer layout position at grab time

	// Panning
	PanOrigin topo.Point // pan offset at gesture start

	// Shared
	StartScreen topo.Point // pointer screen position at gesture start
	Moved       bool       // travel exceeded the click threshold
}

// =============================================================================
// ViewState
// =============================================================================

// ViewState is the session-scoped mutable state of the visualizer.
// Positions survives refreshes (keyed by node id); everything else resets
// with the UI session.
type ViewState struct {
	// Positions remembers layout-space positions for nodes the user has
	// dragged. The layout engine uses these verbatim.
	Positions map[string]topo.Point `json:"positions"`

	Zoom       float64    `json:"zoom"`
	Pan        topo.Point `json:"pan"`
	SelectedID string     `json:"selected_id,omitempty"`

	Drag DragState `json:"-"`
}

// NewViewState creates a view state with identity transform and no
// remembered positions.
func NewViewState() *ViewState {
	return &ViewState{
		Positions: make(map[string]topo.Point),
		Zoom:      1.0,
	}
}

// Transform returns the current screen transform.
func (s *ViewState) Transform() Transform {
	return Transform{Zoom: s.Zoom, Pan: s.Pan}
}

// Prune discards remembered positions for node ids no longer present in
// the snapshot, so positions of departed devices do not leak across
// sessions of the same id space.
func (s *ViewState) Prune(snap topo.Snapshot) {
	present := make(map[string]bool, len(snap.Nodes))
	for i := range snap.Nodes {
		present[snap.Nodes[i].ID] = true
	}
	for id := range s.Positions {
		if !present[id] {
			delete(s.Positions, id)
		}
	}
	if s.SelectedID != "" && !present[s.SelectedID] {
		s.SelectedID = ""
	}
}
