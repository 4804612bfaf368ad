// Package cli implements the oneline command-line interface.
//
// This package provides commands for laying out single-line diagrams,
// validating their connections, exporting them as DOT/SVG/PDF/PNG, browsing
// them interactively, and serving the layout API over HTTP. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute positions for every unplaced piece of equipment
//   - validate: List all connection problems in a diagram
//   - export: Generate DOT, SVG, PDF, or PNG output
//   - inspect: Interactive equipment browser with drag simulation
//   - serve: HTTP API exposing layout and validation
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gridsmith/oneline/pkg/buildinfo"
	"github.com/gridsmith/oneline/pkg/cache"
	"github.com/gridsmith/oneline/pkg/config"
	"github.com/gridsmith/oneline/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "oneline"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and the user's
// configuration loaded.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: config.Load(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "oneline",
		Short:        "Oneline lays out and validates single-line diagrams",
		Long:         `Oneline is a CLI tool for electrical single-line diagrams: it computes layered layouts for equipment connection graphs, validates voltages and connection capacities, and exports the result in several formats.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/oneline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// pipelineOptions seeds pipeline options from the loaded configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Margin:            c.Config.Layout.Margin,
		VerticalSpacing:   c.Config.Layout.VerticalSpacing,
		HorizontalSpacing: c.Config.Layout.HorizontalSpacing,
		ContainerWidth:    c.Config.Layout.ContainerWidth,
		Logger:            c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
