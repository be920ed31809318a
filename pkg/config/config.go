// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/user/framepack/pkg/orchestrator"
	"github.com/user/framepack/pkg/pipeline"
	"github.com/user/framepack/pkg/ports"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FRAMEPACK_"

// MaxDimension bounds each side of a target resolution.
const MaxDimension = 16384

// ErrNoSource is returned by Resolve when no source path is configured.
var ErrNoSource = errors.New("config: source path is required")

// Config represents the full configuration for framepack.
type Config struct {
	// Input/Output
	Source    string `yaml:"source" env:"SOURCE"`
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`

	// Extraction
	Quality       int    `yaml:"quality" env:"QUALITY"`
	Resolution    string `yaml:"resolution" env:"RESOLUTION"`
	MaxFrames     int    `yaml:"max_frames" env:"MAX_FRAMES"`
	Backend       string `yaml:"backend" env:"BACKEND"`
	PayloadBudget uint64 `yaml:"payload_budget" env:"PAYLOAD_BUDGET"`

	// Logging
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Debug
	Debug    bool   `yaml:"debug" env:"DEBUG"`
	DebugDir string `yaml:"debug_dir" env:"DEBUG_DIR"`

	// Reports
	MetricsFile string `yaml:"metrics_file" env:"METRICS_FILE"`
	SummaryFile string `yaml:"summary_file" env:"SUMMARY_FILE"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputDir: "data",
		Quality:   ports.DefaultQuality,
		Backend:   "auto",
		LogLevel:  "info",
		DebugDir:  "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays FRAMEPACK_* variables from the process environment.
// Unset variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	return env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix})
}

// ApplyEnvFrom overlays variables from vars instead of the process
// environment.
func (c *Config) ApplyEnvFrom(vars map[string]string) error {
	return env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix, Environment: vars})
}

// ParseResolution parses "WIDTHxHEIGHT". The separator may be x or X and
// both sides must be positive integers. The empty string means native size.
func ParseResolution(s string) (pipeline.Dimension, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return pipeline.Dimension{}, nil
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return pipeline.Dimension{}, fmt.Errorf("resolution %q: expected WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return pipeline.Dimension{}, fmt.Errorf("resolution %q: invalid width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return pipeline.Dimension{}, fmt.Errorf("resolution %q: invalid height", s)
	}
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return pipeline.Dimension{}, fmt.Errorf("resolution %q: sides must be in [1, %d]", s, MaxDimension)
	}
	return pipeline.Dimension{Width: width, Height: height}, nil
}

// ClampQuality limits q to [1, 100]. ok is false when q was out of range.
func ClampQuality(q int) (clamped int, ok bool) {
	switch {
	case q < ports.MinQuality:
		return ports.MinQuality, false
	case q > ports.MaxQuality:
		return ports.MaxQuality, false
	}
	return q, true
}

// Resolve validates c and converts it to an orchestrator.Config.
// Recoverable problems are returned as warnings and also stored on the
// result; a missing source is the only error.
func (c Config) Resolve(runID string) (orchestrator.Config, []string, error) {
	if strings.TrimSpace(c.Source) == "" {
		return orchestrator.Config{}, nil, ErrNoSource
	}

	var warnings []string

	quality, ok := ClampQuality(c.Quality)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("quality %d out of range, clamped to %d", c.Quality, quality))
	}

	target, err := ParseResolution(c.Resolution)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid resolution %q, using native size", c.Resolution))
	}

	maxFrames := c.MaxFrames
	if maxFrames < 0 {
		warnings = append(warnings, fmt.Sprintf("negative frame limit %d ignored", maxFrames))
		maxFrames = 0
	}

	outputDir := c.OutputDir
	if outputDir == "" {
		outputDir = Defaults().OutputDir
	}

	return orchestrator.Config{
		RunID:         runID,
		SourcePath:    c.Source,
		OutputDir:     outputDir,
		Quality:       quality,
		Target:        target,
		MaxFrames:     maxFrames,
		PayloadBudget: c.PayloadBudget,
		Warnings:      warnings,
	}, warnings, nil
}
