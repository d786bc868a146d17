package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-html2png/internal/config"
)

// envPrefix marks the CLI's own environment variables.
const envPrefix = "HTML2PNG_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // HTML2PNG_CONFIG: config file name or path
	InputDir   string // HTML2PNG_INPUT_DIR: default input directory
	OutputDir  string // HTML2PNG_OUTPUT_DIR: default output directory
	Manifest   string // HTML2PNG_MANIFEST: default manifest
	Engine     string // HTML2PNG_ENGINE: rod, chromedp
	Timeout    string // HTML2PNG_TIMEOUT: per-document deadline
	Settle     string // HTML2PNG_SETTLE: network quiet window
	Report     string // HTML2PNG_REPORT: run report path
}

// knownEnvVars lists valid HTML2PNG_* environment variables.
var knownEnvVars = map[string]bool{
	"HTML2PNG_CONFIG":     true,
	"HTML2PNG_INPUT_DIR":  true,
	"HTML2PNG_OUTPUT_DIR": true,
	"HTML2PNG_MANIFEST":   true,
	"HTML2PNG_ENGINE":     true,
	"HTML2PNG_TIMEOUT":    true,
	"HTML2PNG_SETTLE":     true,
	"HTML2PNG_REPORT":     true,
	"HTML2PNG_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Durations stay strings so Config.Validate reports bad values.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("HTML2PNG_CONFIG"),
		InputDir:   os.Getenv("HTML2PNG_INPUT_DIR"),
		OutputDir:  os.Getenv("HTML2PNG_OUTPUT_DIR"),
		Manifest:   os.Getenv("HTML2PNG_MANIFEST"),
		Engine:     os.Getenv("HTML2PNG_ENGINE"),
		Timeout:    os.Getenv("HTML2PNG_TIMEOUT"),
		Settle:     os.Getenv("HTML2PNG_SETTLE"),
		Report:     os.Getenv("HTML2PNG_REPORT"),
	}
}

// warnUnknownEnvVars prints a warning for every unrecognized HTML2PNG_*
// variable, catching typos like HTML2PNG_OUTPUT instead of HTML2PNG_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig fills config values that are still empty.
// Precedence: CLI flags > env vars > config file > defaults
// (flags are applied afterwards by mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIfEmpty(&cfg.Input.DefaultDir, env.InputDir)
	setIfEmpty(&cfg.Input.Manifest, env.Manifest)
	setIfEmpty(&cfg.Output.DefaultDir, env.OutputDir)
	setIfEmpty(&cfg.Render.Engine, env.Engine)
	setIfEmpty(&cfg.Render.Timeout, env.Timeout)
	setIfEmpty(&cfg.Render.Settle, env.Settle)
	setIfEmpty(&cfg.Report.Path, env.Report)
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}
