// Package dot exports a topology snapshot as Graphviz DOT and renders it to
// SVG for sharing outside the terminal.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/topoview/topoview/pkg/topo"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes IP/MAC addresses and traffic rates in node labels.
	// When false, only the device name is shown.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT format. The root router renders
// as a doublecircle, mesh peers as hexagons and client devices as boxes;
// offline devices get dashed grey outlines. Wireless and mesh-backhaul
// links render dashed.
func ToDOT(snap topo.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph topology {\n")
	buf.WriteString("  layout=twopi;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("\n")

	for i := range snap.Nodes {
		n := snap.Nodes[i]
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges {
		if attrs := edgeAttrs(e.Medium); attrs != "" {
			fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.From, e.To, attrs)
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n topo.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	parts := []string{n.Name}
	if n.Meta.IPAddress != "" {
		parts = append(parts, n.Meta.IPAddress)
	}
	if n.Meta.MACAddress != "" {
		parts = append(parts, n.Meta.MACAddress)
	}
	if rate := n.TrafficRate(); rate > 0 {
		parts = append(parts, fmt.Sprintf("%.1f Mbps", rate))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n topo.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case topo.KindRoot:
		attrs = append(attrs, "shape=doublecircle", "fillcolor=orange", "root=true")
	case topo.KindMeshPeer:
		attrs = append(attrs, "shape=hexagon", "fillcolor=plum")
	}
	if !n.Online {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
	}
	return attrs
}

func edgeAttrs(m topo.Medium) string {
	switch m {
	case topo.MediumWireless:
		return "style=dashed, color=steelblue"
	case topo.MediumMeshBackhaul:
		return "style=dashed, color=purple, penwidth=2"
	default:
		return ""
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element to a zero-origin viewBox
// with explicit pixel dimensions, so browsers scale the export predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
