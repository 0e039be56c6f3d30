// Package layout assigns default layout-space coordinates to topology nodes.
//
// Placement is purely geometric and fully deterministic: the root router is
// pinned at the canvas center, mesh peers sit on a fixed-radius ring evenly
// spaced in appearance order, and client devices occupy outer bands whose
// radius depends on connection medium (wireless beyond wired, to visually
// separate transport types). A node whose id has a remembered position -
// because the user dragged it - keeps that position verbatim and skips the
// ring rules entirely.
//
// There is no randomness anywhere in this package: two runs over the same
// snapshot and remembered-position map produce identical coordinates.
package layout

import (
	"math"

	"github.com/topoview/topoview/pkg/topo"
)

// =============================================================================
// Options
// =============================================================================

// Default geometry. Radii are in layout-space units and independent of the
// number of nodes on a ring.
const (
	DefaultPeerRadius     = 140.0
	DefaultWiredRadius    = 260.0
	DefaultWirelessRadius = 340.0
	DefaultJitterStep     = 14.0
	DefaultJitterCycle    = 3
)

// DefaultCanvas is the bounded rectangle all computed coordinates are
// clamped to when no canvas is configured.
var DefaultCanvas = topo.Rect{MinX: 0, MinY: 0, MaxX: 1200, MaxY: 800}

// Options configures ring geometry. Zero values are replaced with defaults
// by New.
type Options struct {
	// Canvas bounds every computed coordinate. Drags are clamped to the
	// same rectangle by the interaction controller.
	Canvas topo.Rect

	// PeerRadius is the mesh-peer ring radius, constant regardless of
	// peer count.
	PeerRadius float64

	// WiredRadius and WirelessRadius are the client-device band radii.
	WiredRadius    float64
	WirelessRadius float64

	// JitterStep is the per-index radius offset applied to device bands
	// purely for visual declutter. It cycles every JitterCycle devices and
	// carries no meaning: edge routing ignores it.
	JitterStep  float64
	JitterCycle int
}

func (o Options) withDefaults() Options {
	if o.Canvas == (topo.Rect{}) {
		o.Canvas = DefaultCanvas
	}
	if o.PeerRadius == 0 {
		o.PeerRadius = DefaultPeerRadius
	}
	if o.WiredRadius == 0 {
		o.WiredRadius = DefaultWiredRadius
	}
	if o.WirelessRadius == 0 {
		o.WirelessRadius = DefaultWirelessRadius
	}
	if o.JitterStep == 0 {
		o.JitterStep = DefaultJitterStep
	}
	if o.JitterCycle == 0 {
		o.JitterCycle = DefaultJitterCycle
	}
	return o
}

// =============================================================================
// Engine
// =============================================================================

// Engine computes default positions for nodes lacking a remembered one.
type Engine struct {
	opts Options
}

// New creates a layout engine, filling zero option fields with defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Canvas returns the bounded canvas rectangle the engine clamps to.
func (e *Engine) Canvas() topo.Rect {
	return e.opts.Canvas
}

// Place resolves a position for every node in the snapshot.
//
// Remembered positions (keyed by node id) are used verbatim. Everything
// else gets a deterministic ring position: root at the canvas center, mesh
// peers on the peer ring in appearance order, client devices on the band
// matching their connection medium with angle index/total * 2π. All computed
// coordinates are clamped to the canvas rectangle.
func (e *Engine) Place(snap topo.Snapshot, remembered map[string]topo.Point) []topo.PlacedNode {
	center := e.opts.Canvas.Center()

	var peerTotal, deviceTotal int
	for i := range snap.Nodes {
		switch snap.Nodes[i].Kind {
		case topo.KindMeshPeer:
			peerTotal++
		case topo.KindClientDevice:
			deviceTotal++
		}
	}

	placed := make([]topo.PlacedNode, 0, len(snap.Nodes))
	peerIdx, deviceIdx := 0, 0
	for _, n := range snap.Nodes {
		if p, ok := remembered[n.ID]; ok {
			placed = append(placed, topo.PlacedNode{Node: n, Pos: p})
			continue
		}

		var pos topo.Point
		switch n.Kind {
		case topo.KindRoot:
			pos = center
		case topo.KindMeshPeer:
			pos = ringPoint(center, e.opts.PeerRadius, peerIdx, peerTotal)
			peerIdx++
		case topo.KindClientDevice:
			radius := e.opts.WiredRadius
			if n.Medium == topo.MediumWireless {
				radius = e.opts.WirelessRadius
			}
			radius += e.opts.JitterStep * float64(deviceIdx%e.opts.JitterCycle)
			pos = ringPoint(center, radius, deviceIdx, deviceTotal)
			deviceIdx++
		}

		placed = append(placed, topo.PlacedNode{Node: n, Pos: e.opts.Canvas.Clamp(pos)})
	}
	return placed
}

// ringPoint returns the i-th of total evenly spaced points on a circle.
func ringPoint(center topo.Point, radius float64, i, total int) topo.Point {
	if total <= 0 {
		total = 1
	}
	angle := 2 * math.Pi * float64(i) / float64(total)
	return topo.Point{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}
