package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/layout"
	"github.com/gridsmith/oneline/pkg/render"
)

// Export generates all requested artifacts from a laid-out graph.
func Export(g *equipment.Graph, res layout.Result, opts Options) (map[string][]byte, error) {
	opts.SetExportDefaults()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string

	for _, format := range opts.Formats {
		switch format {
		case FormatPositions:
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal positions: %w", err)
			}
			artifacts[format] = data

		case FormatDOT:
			artifacts[format] = []byte(dotFor(g, opts, &dot))

		case FormatSVG:
			svg, err := render.RenderSVG(dotFor(g, opts, &dot))
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = svg

		case FormatPDF:
			pdf, err := render.RenderPDF(dotFor(g, opts, &dot))
			if err != nil {
				return nil, fmt.Errorf("render pdf: %w", err)
			}
			artifacts[format] = pdf

		case FormatPNG:
			png, err := render.RenderPNG(dotFor(g, opts, &dot), opts.Scale)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = png

		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}

	return artifacts, nil
}

// dotFor generates the DOT source once and reuses it across formats.
func dotFor(g *equipment.Graph, opts Options, memo *string) string {
	if *memo == "" {
		*memo = render.ToDOT(g, render.Options{Detailed: opts.Detailed})
	}
	return *memo
}
