// Package filter enforces the visible-node budget and viewport culling over
// a topology snapshot.
//
// The budget applies to client-device nodes only: the root router and mesh
// peers are always rendered. Ranking is by aggregate traffic (download +
// upload), descending, with ties broken by input order so repeated refreshes
// with unchanged data never reshuffle the visible set. Offline devices are
// dropped before any online device when the budget is under pressure.
//
// Viewport culling hides nodes whose position falls outside the supplied
// rectangle without removing them from the model: hidden nodes still count
// toward "total known devices" statistics. Edges pointing at dropped or
// hidden nodes are pruned in the same pass, so a rendered frame never
// contains a dangling edge.
package filter

import (
	"sort"

	"github.com/topoview/topoview/pkg/topo"
)

// Stats summarizes one filtering pass, for the dashboard's visible/total
// counters.
type Stats struct {
	TotalDevices    int `json:"total_devices"`
	VisibleDevices  int `json:"visible_devices"`
	OnlineDevices   int `json:"online_devices"`
	DroppedByBudget int `json:"dropped_by_budget"`
	HiddenByView    int `json:"hidden_by_view"`
}

// ApplyBudget returns a copy of snap with client devices over the budget
// removed, together with filtering statistics.
//
// maxVisible is the total visible-node budget; one slot is reserved for the
// root, so up to maxVisible-1 client devices survive. Mesh peers are exempt
// and consume no budget. Devices in the result are ordered by descending
// priority score (ties by first-seen input order); root and peers keep their
// original positions at the front of the node list.
//
// Edges whose endpoint was dropped are removed in the same pass.
func ApplyBudget(snap topo.Snapshot, maxVisible int) (topo.Snapshot, Stats) {
	var (
		exempt  []topo.Node
		devices []topo.Node
	)
	for _, n := range snap.Nodes {
		if n.IsExempt() {
			exempt = append(exempt, n)
		} else {
			devices = append(devices, n)
		}
	}

	stats := Stats{TotalDevices: len(devices)}
	for _, d := range devices {
		if d.Online {
			stats.OnlineDevices++
		}
	}

	budget := maxVisible - 1 // root reservation
	if budget < 0 {
		budget = 0
	}

	kept := rank(devices, budget)
	stats.VisibleDevices = len(kept)
	stats.DroppedByBudget = len(devices) - len(kept)

	out := topo.Snapshot{
		Nodes: append(exempt, kept...),
		Edges: nil,
	}
	present := make(map[string]bool, len(out.Nodes))
	for _, n := range out.Nodes {
		present[n.ID] = true
	}
	for _, e := range snap.Edges {
		if present[e.From] && present[e.To] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, stats
}

// rank orders devices by descending priority score and truncates to budget.
// Offline devices are dropped before any online device regardless of score;
// they are only kept when room remains after every online device fits.
// Sorting is stable so equal scores keep their input order.
func rank(devices []topo.Node, budget int) []topo.Node {
	if len(devices) <= budget {
		return sortByPriority(devices)
	}

	var online, offline []topo.Node
	for _, d := range devices {
		if d.Online {
			online = append(online, d)
		} else {
			offline = append(offline, d)
		}
	}

	online = sortByPriority(online)
	if len(online) >= budget {
		return online[:budget]
	}

	offline = sortByPriority(offline)
	room := budget - len(online)
	if room > len(offline) {
		room = len(offline)
	}
	return append(online, offline[:room]...)
}

func sortByPriority(nodes []topo.Node) []topo.Node {
	out := make([]topo.Node, len(nodes))
	copy(out, nodes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrafficRate() > out[j].TrafficRate()
	})
	return out
}

// CullViewport marks placed nodes outside the viewport as hidden and prunes
// edges touching a hidden node. The root node is never hidden. The input
// slice is not modified; hidden nodes remain in the returned slice so model
// statistics stay accurate.
func CullViewport(placed []topo.PlacedNode, edges []topo.Edge, viewport topo.Rect) ([]topo.PlacedNode, []topo.Edge, int) {
	out := make([]topo.PlacedNode, len(placed))
	copy(out, placed)

	hidden := 0
	visible := make(map[string]bool, len(out))
	for i := range out {
		if out[i].IsRoot() || viewport.Contains(out[i].Pos) {
			out[i].Hidden = false
			visible[out[i].ID] = true
			continue
		}
		out[i].Hidden = true
		hidden++
	}

	var keptEdges []topo.Edge
	for _, e := range edges {
		if visible[e.From] && visible[e.To] {
			keptEdges = append(keptEdges, e)
		}
	}
	return out, keptEdges, hidden
}

// CountVisibleDevices returns the number of client devices that survived
// both budgeting and culling. Hidden devices count toward totals but never
// toward the visible counter.
func CountVisibleDevices(placed []topo.PlacedNode) int {
	n := 0
	for i := range placed {
		if placed[i].Kind == topo.KindClientDevice && !placed[i].Hidden {
			n++
		}
	}
	return n
}
