// Package render exports equipment graphs as Graphviz DOT and converts the
// result to SVG, PDF, or PNG. It is the export path; interactive rendering is
// the host application's job and works from the layout result directly.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/gridsmith/oneline/pkg/equipment"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes voltage and connection capacity in node labels.
	// When false, only the equipment name (or ID) is shown.
	Detailed bool
}

// ToDOT converts an equipment graph to Graphviz DOT. Ranks flow top to
// bottom so sources sit above loads, matching the diagram convention. Each
// kind gets its conventional shape: generators are circles, transformers
// double circles, buses wide flat boxes, meters squares.
//
// The resulting DOT string can be rendered with [RenderSVG], [RenderPDF],
// or [RenderPNG].
func ToDOT(g *equipment.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph oneline {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.7;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Load)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *equipment.Node, detailed bool) string {
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{label}
	if v, ok := n.Voltage(equipment.SourceFacing); ok {
		if lv, lok := n.Voltage(equipment.LoadFacing); lok && lv != v {
			parts = append(parts, fmt.Sprintf("%g/%gkV", v, lv))
		} else {
			parts = append(parts, fmt.Sprintf("%gkV", v))
		}
	}
	parts = append(parts, fmt.Sprintf("%d↑ %d↓", n.AllowedSources, n.AllowedLoads))
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *equipment.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case equipment.KindGenerator:
		attrs = append(attrs, "shape=circle")
	case equipment.KindTransformer:
		attrs = append(attrs, "shape=doublecircle")
	case equipment.KindBus:
		// Buses render as flat bars; width follows the stored bus width.
		attrs = append(attrs,
			"shape=box",
			"height=0.2",
			fmt.Sprintf("width=%.2f", n.Size().Width/72),
			"fixedsize=true",
			"fillcolor=black",
			"fontcolor=white",
		)
	case equipment.KindMeter:
		attrs = append(attrs, "shape=square")
	default:
		attrs = append(attrs, "shape=box, style=\"rounded,filled\"")
	}
	return attrs
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
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz svg tag so the viewBox origin is 0 0
// and the pixel dimensions match it, which embeds cleanly in host pages.
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

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
