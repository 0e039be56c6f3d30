package topo

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// RootID is the node ID used for the root router in every snapshot.
// It is fixed so that remembered positions and edges survive refreshes even
// when upstream router data is missing.
const RootID = "root"

// PlaceholderRouterName is the display name used when no router descriptor
// is available from the data source.
const PlaceholderRouterName = "Router"

// Kind identifies what a node represents.
type Kind int

// Node kinds.
const (
	KindRoot Kind = iota
	KindMeshPeer
	KindClientDevice
)

// String returns the serialization name for the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root-router"
	case KindMeshPeer:
		return "mesh-peer"
	case KindClientDevice:
		return "client-device"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Medium identifies the transport of a node's uplink.
type Medium int

// Connection media.
const (
	MediumWired Medium = iota
	MediumWireless
	MediumMeshBackhaul
)

// String returns the serialization name for the medium.
func (m Medium) String() string {
	switch m {
	case MediumWired:
		return "wired"
	case MediumWireless:
		return "wireless"
	case MediumMeshBackhaul:
		return "mesh-backhaul"
	default:
		return fmt.Sprintf("medium(%d)", int(m))
	}
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a coordinate in layout-space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Rect is an axis-aligned rectangle in layout-space.
type Rect struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Contains reports whether p lies inside the rectangle (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Clamp returns p moved to the nearest point inside the rectangle.
// Points already inside are returned unchanged.
func (r Rect) Clamp(p Point) Point {
	if p.X < r.MinX {
		p.X = r.MinX
	}
	if p.X > r.MaxX {
		p.X = r.MaxX
	}
	if p.Y < r.MinY {
		p.Y = r.MinY
	}
	if p.Y > r.MaxY {
		p.Y = r.MaxY
	}
	return p
}

// =============================================================================
// Node and Edge
// =============================================================================

// NodeMeta contains display-only device details. None of these fields carry
// invariants; they feed badges, detail panels and priority scoring.
type NodeMeta struct {
	IPAddress    string  `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	MACAddress   string  `json:"mac_address,omitempty" bson:"mac_address,omitempty"`
	DownloadRate float64 `json:"download_rate,omitempty" bson:"download_rate,omitempty"`
	UploadRate   float64 `json:"upload_rate,omitempty" bson:"upload_rate,omitempty"`
}

// Node is one vertex of the topology graph: the root router, a mesh peer,
// or a client device.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Name     string   `json:"name" bson:"name"`
	Kind     Kind     `json:"kind" bson:"kind"`
	Online   bool     `json:"online" bson:"online"`
	Medium   Medium   `json:"medium" bson:"medium"`
	Category string   `json:"category,omitempty" bson:"category,omitempty"` // client devices only
	Meta     NodeMeta `json:"meta,omitempty" bson:"meta,omitempty"`
}

// TrafficRate returns the aggregate traffic used for priority ranking.
// It is derived on demand and never persisted.
func (n *Node) TrafficRate() float64 {
	return n.Meta.DownloadRate + n.Meta.UploadRate
}

// IsRoot returns true for the root-router node.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }

// IsExempt reports whether the node is exempt from the visible-node budget.
// Root and mesh-peer nodes are always rendered.
func (n *Node) IsExempt() bool { return n.Kind != KindClientDevice }

// Edge is a logical link drawn between two node ids. Medium mirrors the
// target node's connection medium and drives stroke styling.
type Edge struct {
	From   string `json:"from" bson:"from"`
	To     string `json:"to" bson:"to"`
	Medium Medium `json:"medium" bson:"medium"`
}

// PlacedNode is a node with a resolved layout-space position.
// Hidden marks nodes culled by the viewport: still part of the model and of
// "total known" statistics, but not rendered or interactive this frame.
type PlacedNode struct {
	Node
	Pos    Point `json:"pos" bson:"pos"`
	Hidden bool  `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is one full rebuild of the topology model. A new Snapshot is
// produced every refresh; positions and selection live outside it so they
// survive rebuilds.
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Root returns the root node of the snapshot, or nil if absent.
// A well-formed snapshot always has exactly one root (see Validate).
func (s *Snapshot) Root() *Node {
	for i := range s.Nodes {
		if s.Nodes[i].Kind == KindRoot {
			return &s.Nodes[i]
		}
	}
	return nil
}

// NodeByID returns the node with the given id, or nil if absent.
func (s *Snapshot) NodeByID(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// DeviceCount returns the number of client-device nodes.
func (s *Snapshot) DeviceCount() int {
	n := 0
	for i := range s.Nodes {
		if s.Nodes[i].Kind == KindClientDevice {
			n++
		}
	}
	return n
}

// Validate checks snapshot invariants: exactly one root node, unique node
// ids, and edges referencing only nodes present in the snapshot.
func (s *Snapshot) Validate() error {
	roots := 0
	seen := make(map[string]bool, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.Kind == KindRoot {
			roots++
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	if roots != 1 {
		return fmt.Errorf("snapshot must contain exactly one root node, got %d", roots)
	}
	for _, e := range s.Edges {
		if !seen[e.From] || !seen[e.To] {
			return fmt.Errorf("edge %s→%s references missing node", e.From, e.To)
		}
	}
	return nil
}

// MarshalSnapshot serializes a Snapshot to JSON bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot deserializes JSON bytes into a Snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}
