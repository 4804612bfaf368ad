// Package config loads the oneline configuration file.
//
// Configuration lives in config.toml under the XDG config directory and
// covers the layout geometry, snap thresholds, and server address. Missing
// files and missing keys fall back to defaults, so a config file is never
// required.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/gridsmith/oneline/pkg/layout"
	"github.com/gridsmith/oneline/pkg/snap"
)

// Config holds oneline configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Snap   SnapConfig   `toml:"snap"`
	Serve  ServeConfig  `toml:"serve"`
}

// LayoutConfig controls the layout engine geometry.
type LayoutConfig struct {
	Margin            float64 `toml:"margin"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	ContainerWidth    float64 `toml:"container_width"`
	MinNodeWidth      float64 `toml:"min_node_width"`
	NodePadding       float64 `toml:"node_padding"`
	SlideStep         float64 `toml:"slide_step"`
}

// SnapConfig controls the drag snap thresholds.
type SnapConfig struct {
	ThresholdX float64 `toml:"threshold_x"`
	ThresholdY float64 `toml:"threshold_y"`
}

// ServeConfig controls the HTTP API server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	lo := layout.DefaultOptions()
	return &Config{
		Layout: LayoutConfig{
			Margin:            lo.Margin,
			VerticalSpacing:   lo.VerticalSpacing,
			HorizontalSpacing: lo.HorizontalSpacing,
			ContainerWidth:    lo.ContainerWidth,
			MinNodeWidth:      lo.MinNodeWidth,
			NodePadding:       lo.NodePadding,
			SlideStep:         lo.SlideStep,
		},
		Snap: SnapConfig{
			ThresholdX: snap.DefaultThreshold,
			ThresholdY: snap.DefaultThreshold,
		},
		Serve: ServeConfig{Addr: ":8321"},
	}
}

// ConfigDir returns the oneline config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "oneline")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the default config file, falling back to defaults if it
// doesn't exist.
func Load() *Config {
	return LoadFile(configPath())
}

// LoadFile reads a config file from an explicit path. Missing files and
// unreadable content fall back to defaults; present keys override them.
func LoadFile(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// LayoutOptions converts the layout section to engine options.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		Margin:            c.Layout.Margin,
		VerticalSpacing:   c.Layout.VerticalSpacing,
		HorizontalSpacing: c.Layout.HorizontalSpacing,
		ContainerWidth:    c.Layout.ContainerWidth,
		MinNodeWidth:      c.Layout.MinNodeWidth,
		NodePadding:       c.Layout.NodePadding,
		SlideStep:         c.Layout.SlideStep,
	}
}
