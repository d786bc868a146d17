package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
	"github.com/alnah/go-html2png/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoInput     = errors.New("no input specified")
	ErrNoDocuments = errors.New("no HTML documents found")
	ErrJobsFailed  = errors.New("some documents failed to render")
	ErrWriteReport = errors.New("failed to write run report")
)

// runRender loads configuration, resolves the jobs, renders them and
// prints progress and the summary line.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected one input directory or file, got %d", ErrUsage, len(positional))
	}
	if flags.manifest != "" && len(positional) > 0 {
		return fmt.Errorf("%w: --manifest cannot be combined with an input argument", ErrUsage)
	}
	if flags.manifest != "" && flags.output != "" {
		return fmt.Errorf("%w: --output does not apply to --manifest (outputs come from the manifest)", ErrUsage)
	}

	warnUnknownEnvVars(env.Stderr)
	envCfg := loadEnvConfig()

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	jobs, err := resolveJobs(positional, cfg)
	if err != nil {
		return err
	}

	engine, err := env.NewEngine(cfg.Render.Engine)
	if err != nil {
		return err
	}
	// Validated above.
	timeout, _ := cfg.Render.TimeoutDuration()
	settle, _ := cfg.Render.SettleDuration()

	renderer, err := html2png.NewRenderer(
		html2png.WithEngine(engine),
		html2png.WithRegion(cfg.Render.Region()),
		html2png.WithTimeout(timeout),
		html2png.WithSettle(settle),
		html2png.WithBrowserBin(cfg.Browser.Bin),
		html2png.WithNoSandbox(cfg.Browser.NoSandbox),
		html2png.WithLogger(newLogger(env.Stderr, flags.common)),
		html2png.WithProgress(progressPrinter(env.Stdout, flags.common)),
	)
	if err != nil {
		return err
	}

	sum, runErr := renderer.Run(ctx, jobs)
	// A run stopped before its first job has nothing to count; the error says it all.
	if !flags.common.quiet && (runErr == nil || sum.Attempted() > 0) {
		printSummary(env.Stdout, sum, flags.common.verbose)
	}

	if runErr == nil && sum.Failed() > 0 {
		runErr = fmt.Errorf("%w: %d of %d%s", ErrJobsFailed, sum.Failed(), sum.Total(), failureHint(sum))
	}
	if cfg.Report.Path != "" {
		if err := writeReport(cfg.Report.Path, newRunReport(sum, engine.Name(), cfg.Render.Region(), env.Now())); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	return runErr
}

// loadConfig loads the config named by the flag, then by HTML2PNG_CONFIG.
// Without either, defaults apply.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	setIfSet(&cfg.Output.DefaultDir, flags.output)
	setIfSet(&cfg.Input.Manifest, flags.manifest)
	setIfSet(&cfg.Report.Path, flags.report)
	setIfSet(&cfg.Render.Engine, flags.engine)
	setIfSet(&cfg.Render.Timeout, flags.timeout)
	setIfSet(&cfg.Render.Settle, flags.settle)
	setIfSet(&cfg.Browser.Bin, flags.browserBin)
	if flags.width != 0 {
		cfg.Render.Width = flags.width
	}
	if flags.height != 0 {
		cfg.Render.Height = flags.height
	}
	if flags.noSandbox {
		cfg.Browser.NoSandbox = true
	}
}

func setIfSet(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// resolveJobs builds the batch. Priority: input argument, then manifest,
// then input.defaultDir. An input may be a directory or a single HTML file.
func resolveJobs(args []string, cfg *config.Config) ([]html2png.Job, error) {
	input := ""
	if len(args) > 0 {
		input = args[0]
	}

	if input == "" && cfg.Input.Manifest != "" {
		return html2png.LoadManifest(cfg.Input.Manifest)
	}
	if input == "" {
		input = cfg.Input.DefaultDir
	}
	if input == "" {
		return nil, ErrNoInput
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", html2png.ErrSourceNotFound, input)
	}
	if !info.IsDir() {
		if !html2png.IsRenderable(input) {
			return nil, fmt.Errorf("%w: %s (expected .html or .htm)", ErrUsage, input)
		}
		return []html2png.Job{{Source: input, Output: html2png.OutputPath(input, cfg.Output.DefaultDir)}}, nil
	}

	jobs, err := html2png.Enumerate(input, cfg.Output.DefaultDir)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDocuments, input)
	}
	return jobs, nil
}

// newLogger logs to w: warnings by default, debug with --verbose and
// errors only with --quiet.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// progressPrinter prints one "[i/n] name" line per finished job.
// Failure details are left to the logger.
func progressPrinter(w io.Writer, f commonFlags) html2png.ProgressFunc {
	if f.quiet {
		return nil
	}
	return func(done, total int, o html2png.Outcome) {
		name := filepath.Base(o.Job.Source)
		switch {
		case !o.OK():
			fmt.Fprintf(w, "[%d/%d] %s FAILED (%s)\n", done, total, name, html2png.ErrorKind(o.Err))
		case f.verbose:
			fmt.Fprintf(w, "[%d/%d] %s -> %s (%v)\n", done, total, name, o.Job.Output, o.Duration.Round(time.Millisecond))
		default:
			fmt.Fprintf(w, "[%d/%d] %s\n", done, total, name)
		}
	}
}

// printSummary prints the closing count line.
func printSummary(w io.Writer, sum *html2png.Summary, verbose bool) {
	fmt.Fprintf(w, "%d/%d succeeded, %d failed", sum.Succeeded(), sum.Total(), sum.Failed())
	if skipped := sum.Total() - sum.Attempted(); skipped > 0 {
		fmt.Fprintf(w, " (%d not attempted)", skipped)
	}
	if verbose {
		fmt.Fprintf(w, " in %v (run %s)", sum.Duration.Round(time.Millisecond), sum.RunID)
	}
	fmt.Fprintln(w)
}

// failureHint suggests a longer timeout when a job ran out of time.
func failureHint(sum *html2png.Summary) string {
	for _, o := range sum.Failures() {
		if errors.Is(o.Err, html2png.ErrLoadTimeout) {
			return hints.ForTimeout()
		}
	}
	return ""
}

// hintFor returns an actionable hint for a top-level error, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, html2png.ErrBrowserLaunch):
		return hints.ForBrowserLaunch()
	case errors.Is(err, html2png.ErrUnknownEngine):
		return hints.ForEngine(html2png.EngineNames())
	case errors.Is(err, html2png.ErrManifestParse), errors.Is(err, html2png.ErrEmptyManifest):
		return hints.ForManifest()
	case errors.Is(err, html2png.ErrSourceNotFound), errors.Is(err, ErrNoInput), errors.Is(err, ErrNoDocuments):
		return hints.ForSourceNotFound()
	case errors.Is(err, ErrWriteReport):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}
