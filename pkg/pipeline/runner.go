package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gridsmith/oneline/pkg/cache"
	"github.com/gridsmith/oneline/pkg/diagram"
	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/layout"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the reconstructed equipment graph with layout positions
	// applied to every node that had none persisted.
	Graph *equipment.Graph

	// DiagramHash is the content hash of the serialized input diagram.
	DiagramHash string

	// Layout is the computed layout result.
	Layout layout.Result

	// Artifacts contains generated outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Execute runs the complete load → layout → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Content hash over the canonical serialized form, for cache keys.
	if data, err := diagram.Marshal(g); err == nil {
		result.DiagramHash = cache.Hash(data)
	}

	r.Logger.Info("loaded diagram",
		"equipment", g.NodeCount(),
		"connections", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, result.DiagramHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	applyPositions(g, res)
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"strategy", opts.Strategy,
		"levels", len(res.Levels),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Export
	exportStart := time.Now()
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, g, res, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Load reads the input diagram and reconstructs the equipment graph.
func (r *Runner) Load(opts Options) (*equipment.Graph, error) {
	if opts.Reader != nil {
		return diagram.Read(opts.Reader)
	}
	return diagram.ReadFile(opts.Input)
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info. The diagram hash keys the cache; pass "" to skip caching.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *equipment.Graph, diagramHash string, opts Options) (layout.Result, bool, error) {
	opts.SetLayoutDefaults()
	if err := ValidateStrategy(opts.Strategy); err != nil {
		return layout.Result{}, false, err
	}

	var cacheKey string
	if diagramHash != "" {
		cacheKey = r.Keyer.LayoutKey(diagramHash, opts.LayoutKeyOpts())
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
			// Corrupt entry falls through to recompute.
		}
	}

	res := opts.LayoutStrategy()(layout.Snapshot(g), opts.LayoutOptions())

	if cacheKey != "" {
		if data, err := json.Marshal(res); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		}
	}

	return res, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *equipment.Graph, opts Options) (layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, "", opts)
	return res, err
}

// ExportWithCacheInfo generates artifacts with caching and returns cache hit
// info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g *equipment.Graph, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	opts.SetExportDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache.
	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	generated, err := Export(g, res, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range generated {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return generated, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// applyPositions writes the layout patch back onto unplaced nodes so exports
// carry a position for every piece of equipment. Persisted positions win.
func applyPositions(g *equipment.Graph, res layout.Result) {
	for _, n := range g.Nodes() {
		if n.Position.IsZero() {
			if p, ok := res.Positions[n.ID]; ok {
				n.Position = p
			}
		}
	}
}
