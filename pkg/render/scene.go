// Package render turns a placed topology frame into drawing primitives and
// paints them onto output sinks.
//
// Scene construction is a pure function: placed nodes, edges, the current
// selection and the screen transform go in, positioned glyphs and line
// segments come out. Sinks (the terminal canvas here, DOT/SVG in the dot
// subpackage) consume the primitives without ever touching model types, so
// new output targets need no knowledge of topology semantics.
package render

import (
	"github.com/topoview/topoview/pkg/topo"
	"github.com/topoview/topoview/pkg/view"
)

// =============================================================================
// Primitives
// =============================================================================

// NodeGlyph is one node ready to draw: screen position, icon and label.
type NodeGlyph struct {
	ID       string
	X, Y     float64 // screen coordinates
	Icon     rune
	Label    string
	Kind     topo.Kind
	Online   bool
	Selected bool
}

// EdgeLine is one edge ready to draw as a screen-space segment.
type EdgeLine struct {
	FromID, ToID   string
	X1, Y1, X2, Y2 float64
	Medium         topo.Medium
}

// Scene is the full primitive set for one frame.
type Scene struct {
	Nodes []NodeGlyph
	Edges []EdgeLine
}

// =============================================================================
// Icons
// =============================================================================

// Icon glyphs per node kind and device category. Unknown categories fall
// back to the generic device glyph rather than failing, so new categories
// reported by the router degrade gracefully.
const (
	IconRoot    = '◉'
	IconPeer    = '◈'
	IconDevice  = '●'
	IconOffline = '○'
)

var categoryIcons = map[string]rune{
	"computer": '■',
	"laptop":   '▢',
	"phone":    '▰',
	"tablet":   '▭',
	"tv":       '▣',
	"console":  '▦',
	"camera":   '◎',
	"speaker":  '♪',
	"printer":  '▤',
	"nas":      '≡',
	"iot":      '∙',
}

// IconFor resolves the drawing glyph for a node. Offline client devices get
// the hollow glyph regardless of category so state is visible even on
// monochrome terminals.
func IconFor(n topo.Node) rune {
	switch n.Kind {
	case topo.KindRoot:
		return IconRoot
	case topo.KindMeshPeer:
		return IconPeer
	}
	if !n.Online {
		return IconOffline
	}
	if icon, ok := categoryIcons[n.Category]; ok {
		return icon
	}
	return IconDevice
}

// =============================================================================
// Scene Builder
// =============================================================================

// BuildScene projects a placed frame into screen-space primitives.
//
// Hidden nodes are omitted entirely, and edges touching an omitted node are
// dropped so the scene never contains a segment with a missing endpoint.
// The input slices are not modified.
func BuildScene(placed []topo.PlacedNode, edges []topo.Edge, selectedID string, tr view.Transform) Scene {
	scene := Scene{Nodes: make([]NodeGlyph, 0, len(placed))}

	screenPos := make(map[string]topo.Point, len(placed))
	for _, p := range placed {
		if p.Hidden {
			continue
		}
		s := tr.ToScreen(p.Pos)
		screenPos[p.ID] = s
		scene.Nodes = append(scene.Nodes, NodeGlyph{
			ID:       p.ID,
			X:        s.X,
			Y:        s.Y,
			Icon:     IconFor(p.Node),
			Label:    p.Name,
			Kind:     p.Kind,
			Online:   p.Online,
			Selected: p.ID == selectedID,
		})
	}

	for _, e := range edges {
		from, okF := screenPos[e.From]
		to, okT := screenPos[e.To]
		if !okF || !okT {
			continue
		}
		scene.Edges = append(scene.Edges, EdgeLine{
			FromID: e.From, ToID: e.To,
			X1: from.X, Y1: from.Y,
			X2: to.X, Y2: to.Y,
			Medium: e.Medium,
		})
	}
	return scene
}
