package topo

import (
	"fmt"
	"strings"

	apperrors "github.com/topoview/topoview/pkg/errors"
)

// =============================================================================
// Build Input - Source-Agnostic Records
// =============================================================================

// RouterDescriptor describes the root router as reported by the data source.
type RouterDescriptor struct {
	Model     string
	IPAddress string
	Online    bool
}

// DeviceRecord is one client device as reported by the data source, in the
// order the source listed it. Order matters: synthesized ids and priority
// tie-breaks are both positional.
type DeviceRecord struct {
	ID           string
	Name         string
	Online       bool
	Wireless     bool
	Category     string
	IPAddress    string
	MACAddress   string
	DownloadRate float64
	UploadRate   float64

	// PeerID names the mesh peer the device is attached to, when the data
	// source knows the linkage. Empty means attach to root.
	PeerID string
}

// BuildInput collects everything the builder consumes for one refresh.
// Any field may be zero: the builder substitutes placeholders rather than
// failing, so a partial fetch still yields a renderable model.
type BuildInput struct {
	Router     *RouterDescriptor
	Devices    []DeviceRecord
	MeshPeers  []string
	MeshActive bool
}

// =============================================================================
// Graph Model Builder
// =============================================================================

// Build converts raw router/peer/device records into a typed Snapshot.
//
// Rules:
//   - Exactly one root node is always emitted, id [RootID], with a
//     placeholder name and address when no router descriptor is available.
//   - Mesh-peer nodes are emitted only while the mesh feature is active,
//     each connected to root over mesh backhaul.
//   - Client devices get an edge to their attached mesh peer when that peer
//     is present in this snapshot, otherwise to root.
//   - Devices without an id, or with one that fails validation, get a
//     positionally synthesized one so edges can reference them. Synthesized
//     ids are unstable across refreshes when the upstream order changes;
//     position continuity is not guaranteed for them.
//   - Per-record anomalies are recovered locally: malformed peer ids are
//     skipped and malformed hardware addresses dropped from metadata; a bad
//     record never aborts the build.
func Build(in BuildInput) Snapshot {
	nodes := make([]Node, 0, 1+len(in.MeshPeers)+len(in.Devices))
	edges := make([]Edge, 0, len(in.MeshPeers)+len(in.Devices))

	nodes = append(nodes, rootNode(in.Router))

	peers := make(map[string]bool, len(in.MeshPeers))
	if in.MeshActive {
		for i, id := range in.MeshPeers {
			id = strings.TrimSpace(id)
			if id == RootID || peers[id] || apperrors.ValidateNodeID(id) != nil {
				continue
			}
			peers[id] = true
			nodes = append(nodes, Node{
				ID:     id,
				Name:   fmt.Sprintf("Mesh Node %d", i+1),
				Kind:   KindMeshPeer,
				Online: true,
				Medium: MediumMeshBackhaul,
			})
			edges = append(edges, Edge{From: RootID, To: id, Medium: MediumMeshBackhaul})
		}
	}

	seen := map[string]bool{RootID: true}
	for id := range peers {
		seen[id] = true
	}

	for i, d := range in.Devices {
		id := d.ID
		if apperrors.ValidateNodeID(id) != nil {
			id = SynthesizedID(i)
		}
		if seen[id] {
			// Duplicate upstream record; first-seen wins.
			continue
		}
		seen[id] = true

		medium := MediumWired
		if d.Wireless {
			medium = MediumWireless
		}

		name := d.Name
		if name == "" {
			name = id
		}

		mac := d.MACAddress
		if mac != "" && apperrors.ValidateMACAddress(mac) != nil {
			mac = ""
		}

		nodes = append(nodes, Node{
			ID:       id,
			Name:     name,
			Kind:     KindClientDevice,
			Online:   d.Online,
			Medium:   medium,
			Category: d.Category,
			Meta: NodeMeta{
				IPAddress:    d.IPAddress,
				MACAddress:   mac,
				DownloadRate: d.DownloadRate,
				UploadRate:   d.UploadRate,
			},
		})

		from := RootID
		if d.PeerID != "" && peers[d.PeerID] {
			from = d.PeerID
		}
		edges = append(edges, Edge{From: from, To: id, Medium: medium})
	}

	return Snapshot{Nodes: nodes, Edges: edges}
}

// SynthesizedID returns the positional id assigned to a device missing a
// stable identifier. These ids shift when the upstream list order changes.
func SynthesizedID(index int) string {
	return fmt.Sprintf("device-%d", index)
}

func rootNode(r *RouterDescriptor) Node {
	n := Node{
		ID:     RootID,
		Name:   PlaceholderRouterName,
		Kind:   KindRoot,
		Online: false,
		Medium: MediumWired,
	}
	if r != nil {
		if r.Model != "" {
			n.Name = r.Model
		}
		n.Online = r.Online
		n.Meta.IPAddress = r.IPAddress
	}
	return n
}
