package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	output     string
	manifest   string
	report     string
	engine     string
	timeout    string
	settle     string
	width      int
	height     int
	browserBin string
	noSandbox  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-job timing and debug logs")
}

// addRenderFlags registers render flags. Shared by parsing and completion.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	// I/O
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: beside each source)")
	fs.StringVarP(&f.manifest, "manifest", "m", "", "YAML or JSON manifest of source/output pairs")
	fs.StringVar(&f.report, "report", "", "write a run report (.yaml, .yml or .json)")

	// Rendering
	fs.StringVar(&f.engine, "engine", "", "browser engine: rod, chromedp")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document deadline (e.g., 30s, 1m)")
	fs.StringVar(&f.settle, "settle", "", "network quiet window (e.g., 500ms)")
	fs.IntVar(&f.width, "width", 0, "capture width in pixels (default 1080)")
	fs.IntVar(&f.height, "height", 0, "capture height in pixels (default 1080)")

	// Browser
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (Docker/CI)")

	addCommonFlags(fs, &f.common)
}

// newRenderFlagSet builds the render FlagSet bound to f.
func newRenderFlagSet(f *renderFlags, usage io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addRenderFlags(fs, f)
	fs.Usage = func() { printRenderUsage(usage) }
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, usage io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f, usage)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
