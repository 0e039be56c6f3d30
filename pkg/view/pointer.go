package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/topoview/topoview/pkg/topo"
)

// =============================================================================
// Pointer Events
// =============================================================================

// Phase is the lifecycle stage of a pointer event.
type Phase int

// Pointer phases. Cancel aborts an in-flight gesture without a click.
const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel
)

// String returns the phase name for log output.
func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseMove:
		return "move"
	case PhaseUp:
		return "up"
	case PhaseCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PointerEvent is the normalized input unit the controller consumes. Mouse
// and touch inputs are both mapped onto it at the input boundary, so the
// gesture state machine never sees device-specific types.
type PointerEvent struct {
	// ID distinguishes concurrent pointers. Mouse input always uses 0;
	// touch digitizers assign one id per finger.
	ID    int
	X, Y  float64 // screen coordinates
	Phase Phase
}

// Screen returns the event position as a screen-space point.
func (e PointerEvent) Screen() topo.Point {
	return topo.Point{X: e.X, Y: e.Y}
}

// WheelDelta is the zoom factor applied per scroll-wheel notch.
const WheelDelta = 1.1

// FromMouse normalizes a bubbletea mouse message to a pointer event. The
// second return is false for messages the controller does not consume
// (non-left buttons, wheel - the wheel maps to zoom, not to a gesture).
func FromMouse(msg tea.MouseMsg) (PointerEvent, bool) {
	ev := PointerEvent{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return PointerEvent{}, false
		}
		ev.Phase = PhaseDown
	case tea.MouseActionMotion:
		ev.Phase = PhaseMove
	case tea.MouseActionRelease:
		ev.Phase = PhaseUp
	default:
		return PointerEvent{}, false
	}
	return ev, true
}

// WheelZoom returns the zoom factor for a wheel message, or 1 if the
// message is not a wheel event.
func WheelZoom(msg tea.MouseMsg) float64 {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return WheelDelta
	case tea.MouseButtonWheelDown:
		return 1 / WheelDelta
	default:
		return 1
	}
}
