// Package config loads the YAML configuration of the html2png CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/fileutil"
	"github.com/alnah/go-html2png/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxEngineLength   = 20   // "rod", "chromedp"
	MaxDurationLength = 20   // "30s", "1m30s"
)

// configDirName is the directory searched under the user config dir.
const configDirName = "go-html2png"

// Config holds all configuration for a render run.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Browser BrowserConfig `yaml:"browser"`
	Report  ReportConfig  `yaml:"report"`
}

// InputConfig defines where jobs come from.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Directory of .html files (empty = must specify)
	Manifest   string `yaml:"manifest"`   // Manifest file; takes precedence over defaultDir
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// RenderConfig defines capture settings. Zero values keep library defaults.
type RenderConfig struct {
	Engine  string `yaml:"engine"`  // "rod" (default) or "chromedp"
	Width   int    `yaml:"width"`   // pixels (default: 1080)
	Height  int    `yaml:"height"`  // pixels (default: 1080)
	Timeout string `yaml:"timeout"` // per-document deadline, e.g. "30s"
	Settle  string `yaml:"settle"`  // network quiet window, e.g. "500ms"
}

// BrowserConfig defines how Chrome is started.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`       // Chrome binary (empty = auto-detect)
	NoSandbox bool   `yaml:"noSandbox"` // Required in most containers
}

// ReportConfig defines the run report.
type ReportConfig struct {
	Path string `yaml:"path"` // .yaml, .yml or .json (empty = no report)
}

// TimeoutDuration parses render.timeout. Empty yields zero.
func (r RenderConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("render.timeout", r.Timeout)
}

// SettleDuration parses render.settle. Empty yields zero.
func (r RenderConfig) SettleDuration() (time.Duration, error) {
	return parseDuration("render.settle", r.Settle)
}

// Region returns the configured capture region, filling unset dimensions
// with the defaults.
func (r RenderConfig) Region() html2png.Region {
	region := html2png.DefaultRegion()
	if r.Width != 0 {
		region.Width = r.Width
	}
	if r.Height != 0 {
		region.Height = r.Height
	}
	return region
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"input.manifest", c.Input.Manifest, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"render.engine", c.Render.Engine, MaxEngineLength},
		{"render.timeout", c.Render.Timeout, MaxDurationLength},
		{"render.settle", c.Render.Settle, MaxDurationLength},
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"report.path", c.Report.Path, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if !html2png.IsEngineName(c.Render.Engine) {
		return fmt.Errorf("%w: render.engine %q (must be one of %s)",
			ErrInvalidValue, c.Render.Engine, strings.Join(html2png.EngineNames(), ", "))
	}
	if err := validateDimension("render.width", c.Render.Width); err != nil {
		return err
	}
	if err := validateDimension("render.height", c.Render.Height); err != nil {
		return err
	}
	if _, err := c.Render.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Render.SettleDuration(); err != nil {
		return err
	}

	if c.Report.Path != "" && !IsReportPath(c.Report.Path) {
		return fmt.Errorf("%w: report.path %q (extension must be .yaml, .yml or .json)", ErrInvalidValue, c.Report.Path)
	}

	return nil
}

// IsReportPath reports whether path has a report format extension.
func IsReportPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateDimension accepts 0 (default) or 1..MaxDimension.
func validateDimension(fieldName string, v int) error {
	if v < 0 || v > html2png.MaxDimension {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d", ErrInvalidValue, fieldName, html2png.MaxDimension, v)
	}
	return nil
}

func parseDuration(fieldName, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a duration (e.g. 30s, 500ms)", ErrInvalidValue, fieldName, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, fieldName, s)
	}
	return d, nil
}

// DefaultConfig returns a neutral configuration: every field empty, so the
// library defaults apply.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists the files resolveConfigPath tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory first, then ~/.config/go-html2png/.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
