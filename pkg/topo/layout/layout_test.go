package layout

import (
	"math"
	"testing"

	"github.com/topoview/topoview/pkg/topo"
)

func testSnapshot() topo.Snapshot {
	return topo.Build(topo.BuildInput{
		Router:     &topo.RouterDescriptor{Model: "RT-AX88U", Online: true},
		MeshPeers:  []string{"peer-1", "peer-2", "peer-3"},
		MeshActive: true,
		Devices: []topo.DeviceRecord{
			{ID: "d1", Online: true, Wireless: false},
			{ID: "d2", Online: true, Wireless: true},
			{ID: "d3", Online: true, Wireless: true},
			{ID: "d4", Online: false, Wireless: false},
		},
	})
}

func positionsByID(placed []topo.PlacedNode) map[string]topo.Point {
	m := make(map[string]topo.Point, len(placed))
	for _, p := range placed {
		m[p.ID] = p.Pos
	}
	return m
}

func TestPlaceDeterminism(t *testing.T) {
	e := New(Options{})
	snap := testSnapshot()

	a := positionsByID(e.Place(snap, nil))
	b := positionsByID(e.Place(snap, nil))

	if len(a) != len(b) {
		t.Fatalf("node counts differ: %d vs %d", len(a), len(b))
	}
	for id, pa := range a {
		if pb := b[id]; pa != pb {
			t.Errorf("node %s: run 1 = %v, run 2 = %v", id, pa, pb)
		}
	}
}

func TestPlaceRootAtCenter(t *testing.T) {
	e := New(Options{})
	placed := e.Place(testSnapshot(), nil)

	center := e.Canvas().Center()
	for _, p := range placed {
		if p.IsRoot() && p.Pos != center {
			t.Errorf("root at %v, want canvas center %v", p.Pos, center)
		}
	}
}

func TestPlacePeerRing(t *testing.T) {
	e := New(Options{})
	placed := e.Place(testSnapshot(), nil)
	center := e.Canvas().Center()

	for _, p := range placed {
		if p.Kind != topo.KindMeshPeer {
			continue
		}
		dx, dy := p.Pos.X-center.X, p.Pos.Y-center.Y
		r := math.Hypot(dx, dy)
		if math.Abs(r-DefaultPeerRadius) > 1e-9 {
			t.Errorf("peer %s radius = %v, want %v", p.ID, r, DefaultPeerRadius)
		}
	}
}

func TestPlaceMediumBands(t *testing.T) {
	e := New(Options{})
	placed := e.Place(testSnapshot(), nil)
	center := e.Canvas().Center()

	maxJitter := DefaultJitterStep * float64(DefaultJitterCycle-1)
	for _, p := range placed {
		if p.Kind != topo.KindClientDevice {
			continue
		}
		r := math.Hypot(p.Pos.X-center.X, p.Pos.Y-center.Y)
		base := DefaultWiredRadius
		if p.Medium == topo.MediumWireless {
			base = DefaultWirelessRadius
		}
		if r < base-1e-9 || r > base+maxJitter+1e-9 {
			t.Errorf("device %s (%v) radius = %v, want within [%v, %v]",
				p.ID, p.Medium, r, base, base+maxJitter)
		}
	}
}

func TestPlaceRemembersPositions(t *testing.T) {
	e := New(Options{})
	snap := testSnapshot()

	dragged := topo.Point{X: 42, Y: 77}
	placed := e.Place(snap, map[string]topo.Point{"d2": dragged})

	pos := positionsByID(placed)
	if pos["d2"] != dragged {
		t.Errorf("remembered position ignored: got %v, want %v", pos["d2"], dragged)
	}

	// Positions for other nodes are unaffected by the override.
	base := positionsByID(e.Place(snap, nil))
	for id, p := range base {
		if id == "d2" {
			continue
		}
		if pos[id] != p {
			t.Errorf("node %s moved when d2 was overridden: %v vs %v", id, pos[id], p)
		}
	}
}

// Position continuity across refreshes: a dragged node keeps its position
// when the model is rebuilt with changed metadata, as long as its id
// persists.
func TestPlacePositionContinuityAcrossRebuilds(t *testing.T) {
	e := New(Options{})
	remembered := map[string]topo.Point{"d1": {X: 10, Y: 20}}

	first := e.Place(testSnapshot(), remembered)

	refreshed := topo.Build(topo.BuildInput{
		Router:     &topo.RouterDescriptor{Model: "RT-AX88U", Online: true},
		MeshPeers:  []string{"peer-1", "peer-2", "peer-3"},
		MeshActive: true,
		Devices: []topo.DeviceRecord{
			{ID: "d1", Online: false, DownloadRate: 999}, // changed metadata
			{ID: "d2", Online: true, Wireless: true},
		},
	})
	second := e.Place(refreshed, remembered)

	if positionsByID(first)["d1"] != positionsByID(second)["d1"] {
		t.Errorf("dragged position not stable across rebuild: %v vs %v",
			positionsByID(first)["d1"], positionsByID(second)["d1"])
	}
}

func TestPlaceClampsToCanvas(t *testing.T) {
	// A tiny canvas forces every ring position out of bounds.
	e := New(Options{Canvas: topo.Rect{MinX: 0, MinY: 0, MaxX: 50, MaxY: 50}})
	placed := e.Place(testSnapshot(), nil)

	for _, p := range placed {
		if !e.Canvas().Contains(p.Pos) {
			t.Errorf("node %s at %v outside canvas", p.ID, p.Pos)
		}
	}
}

func TestPlaceSingleDevice(t *testing.T) {
	snap := topo.Build(topo.BuildInput{
		Devices: []topo.DeviceRecord{{ID: "only", Online: true}},
	})
	e := New(Options{})
	placed := e.Place(snap, nil)

	if len(placed) != 2 {
		t.Fatalf("placed = %d nodes, want 2", len(placed))
	}
	for _, p := range placed {
		if !e.Canvas().Contains(p.Pos) {
			t.Errorf("node %s at %v outside canvas", p.ID, p.Pos)
		}
	}
}
