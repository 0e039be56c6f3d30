package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/topoview/topoview/pkg/topo"
)

// =============================================================================
// Terminal Sink
// =============================================================================

// Terminal paints a scene onto a character grid for the TUI viewport.
// One scene cell corresponds to one terminal cell, so the caller is expected
// to have chosen a transform that maps layout-space into the grid.
type Terminal struct {
	width, height int

	edgeStyles map[topo.Medium]lipgloss.Style
	rootStyle  lipgloss.Style
	peerStyle  lipgloss.Style
	nodeStyle  lipgloss.Style
	dimStyle   lipgloss.Style
	selStyle   lipgloss.Style
}

// NewTerminal creates a sink for a width x height cell viewport.
func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		width:  width,
		height: height,
		edgeStyles: map[topo.Medium]lipgloss.Style{
			topo.MediumWired:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			topo.MediumWireless:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			topo.MediumMeshBackhaul: lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		},
		rootStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		peerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
		nodeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		selStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true).Reverse(true),
	}
}

type cell struct {
	r     rune
	style lipgloss.Style
}

// Render draws the scene and returns the framed viewport as a string with
// height lines of width cells. Primitives outside the grid are clipped.
func (t *Terminal) Render(scene Scene) string {
	grid := make([][]cell, t.height)
	for y := range grid {
		grid[y] = make([]cell, t.width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}

	// Edges below nodes, nodes below labels.
	for _, e := range scene.Edges {
		t.drawEdge(grid, e)
	}
	for _, n := range scene.Nodes {
		t.drawNode(grid, n)
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteString(c.style.Render(string(c.r)))
		}
	}
	return b.String()
}

func (t *Terminal) drawEdge(grid [][]cell, e EdgeLine) {
	style := t.edgeStyles[e.Medium]
	// Wireless links draw dashed to distinguish them without color.
	dashed := e.Medium == topo.MediumWireless

	x1, y1 := int(math.Round(e.X1)), int(math.Round(e.Y1))
	x2, y2 := int(math.Round(e.X2)), int(math.Round(e.Y2))
	r := edgeRune(x2-x1, y2-y1)

	// Bresenham over the segment, clipping per cell.
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := sign(x2-x1), sign(y2-y1)
	err := dx + dy
	step := 0
	for {
		if !(dashed && step%2 == 1) {
			t.put(grid, x1, y1, cell{r: r, style: style})
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		step++
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func (t *Terminal) drawNode(grid [][]cell, n NodeGlyph) {
	x, y := int(math.Round(n.X)), int(math.Round(n.Y))

	style := t.nodeStyle
	switch {
	case n.Selected:
		style = t.selStyle
	case n.Kind == topo.KindRoot:
		style = t.rootStyle
	case n.Kind == topo.KindMeshPeer:
		style = t.peerStyle
	case !n.Online:
		style = t.dimStyle
	}

	if n.Selected {
		t.put(grid, x-1, y, cell{r: '[', style: style})
		t.put(grid, x+1, y, cell{r: ']', style: style})
	}
	t.put(grid, x, y, cell{r: n.Icon, style: style})

	// Label to the right of the glyph, clipped at the grid edge.
	labelStyle := style
	if !n.Selected && n.Kind == topo.KindClientDevice && n.Online {
		labelStyle = t.nodeStyle
	}
	for i, r := range n.Label {
		t.put(grid, x+2+i, y, cell{r: r, style: labelStyle})
	}
}

func (t *Terminal) put(grid [][]cell, x, y int, c cell) {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	grid[y][x] = c
}

// edgeRune picks a line character by dominant segment direction.
func edgeRune(dx, dy int) rune {
	switch {
	case abs(dx) >= 2*abs(dy):
		return '─'
	case abs(dy) >= 2*abs(dx):
		return '│'
	case sign(dx) == sign(dy):
		return '╲'
	default:
		return '╱'
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
