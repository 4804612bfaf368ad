// Package pipeline provides the load → layout → export pipeline.
//
// This package implements the complete diagram processing flow shared by the
// CLI and the HTTP API. By centralizing this logic, both entry points behave
// identically and caching works the same way everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a persisted diagram and reconstruct the equipment graph
//  2. Layout: Compute positions for every unplaced node
//  3. Export: Generate output artifacts (positions JSON, DOT, SVG, PDF, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "plant.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gridsmith/oneline/pkg/cache"
	"github.com/gridsmith/oneline/pkg/layout"
)

// Strategy names accepted by the pipeline.
const (
	StrategyLayered  = "layered"
	StrategyRelative = "relative"
)

// DefaultStrategy is the default layout strategy.
const DefaultStrategy = StrategyLayered

// Format constants for output artifacts.
const (
	FormatPositions = "positions"
	FormatDOT       = "dot"
	FormatSVG       = "svg"
	FormatPDF       = "pdf"
	FormatPNG       = "png"
)

// DefaultScale is the default PNG resolution multiplier.
const DefaultScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPositions: true,
	FormatDOT:       true,
	FormatSVG:       true,
	FormatPDF:       true,
	FormatPNG:       true,
}

// ValidStrategies is the set of supported layout strategies.
var ValidStrategies = map[string]bool{
	StrategyLayered:  true,
	StrategyRelative: true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is the diagram file path. Reader takes precedence when set.
	Input string `json:"input,omitempty"`

	// Layout options
	Strategy          string  `json:"strategy,omitempty"`
	Margin            float64 `json:"margin,omitempty"`
	VerticalSpacing   float64 `json:"vertical_spacing,omitempty"`
	HorizontalSpacing float64 `json:"horizontal_spacing,omitempty"`
	ContainerWidth    float64 `json:"container_width,omitempty"`

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // include voltages/capacities in DOT labels
	Scale    float64  `json:"scale,omitempty"`    // PNG resolution multiplier

	// Runtime options (not serialized)
	Reader io.Reader   `json:"-"`
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" && o.Reader == nil {
		return fmt.Errorf("input path or reader is required")
	}
	o.SetLayoutDefaults()
	o.SetExportDefaults()
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	defaults := layout.DefaultOptions()
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.Margin == 0 {
		o.Margin = defaults.Margin
	}
	if o.VerticalSpacing == 0 {
		o.VerticalSpacing = defaults.VerticalSpacing
	}
	if o.HorizontalSpacing == 0 {
		o.HorizontalSpacing = defaults.HorizontalSpacing
	}
	if o.ContainerWidth == 0 {
		o.ContainerWidth = defaults.ContainerWidth
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// SetExportDefaults sets default values for artifact generation.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPositions}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateStrategy checks that a layout strategy name is valid.
func ValidateStrategy(strategy string) error {
	if !ValidStrategies[strategy] {
		return fmt.Errorf("invalid strategy: %q (must be one of: layered, relative)", strategy)
	}
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: positions, dot, svg, pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// LayoutOptions converts the pipeline geometry to layout options.
func (o *Options) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Margin = o.Margin
	opts.VerticalSpacing = o.VerticalSpacing
	opts.HorizontalSpacing = o.HorizontalSpacing
	opts.ContainerWidth = o.ContainerWidth
	return opts
}

// LayoutStrategy resolves the strategy name to its implementation.
func (o *Options) LayoutStrategy() layout.Strategy {
	if o.Strategy == StrategyRelative {
		return layout.Relative
	}
	return layout.Layered
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:          o.Strategy,
		Margin:            o.Margin,
		VerticalSpacing:   o.VerticalSpacing,
		HorizontalSpacing: o.HorizontalSpacing,
		ContainerWidth:    o.ContainerWidth,
	}
}

// ArtifactKeyOpts returns cache key options for artifact generation.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		Scale:    o.Scale,
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout result came from cache
	ExportHit bool // Whether all artifacts came from cache
}
