package html2png

import (
	"fmt"
	"log/slog"
	"time"
)

// Capture region defaults, matching the square card format.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1080

	// MaxDimension caps the region to keep capture buffers bounded.
	MaxDimension = 8192
)

// Timing defaults.
const (
	// DefaultTimeout bounds load and capture of a single job.
	DefaultTimeout = 30 * time.Second

	// DefaultSettle is the quiet window with no in-flight requests that
	// marks a document as rendered.
	DefaultSettle = 500 * time.Millisecond
)

// OutputExtension is appended to derived output names.
const OutputExtension = ".png"

// Region is the fixed pixel rectangle captured from every page.
// The origin is always (0,0); the viewport is sized to the region.
type Region struct {
	Width  int
	Height int
}

// DefaultRegion returns the 1080x1080 card region.
func DefaultRegion() Region {
	return Region{Width: DefaultWidth, Height: DefaultHeight}
}

// Validate checks that both dimensions are within (0, MaxDimension].
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d (dimensions must be positive)", ErrInvalidRegion, r.Width, r.Height)
	}
	if r.Width > MaxDimension || r.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d (maximum is %d)", ErrInvalidRegion, r.Width, r.Height, MaxDimension)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Job pairs one source document with the image it produces.
type Job struct {
	Source string `json:"source" yaml:"source"`
	Output string `json:"output" yaml:"output"`
}

// Outcome records how a single job ended. Err is nil on success.
// Skipped marks jobs the run never reached because it stopped early.
type Outcome struct {
	Index    int
	Job      Job
	Err      error
	Duration time.Duration
	Skipped  bool
}

// OK reports whether the job produced its image.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// ProgressFunc is called after each job completes, in job order.
// done counts finished jobs including this one.
type ProgressFunc func(done, total int, o Outcome)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds tunables set through options.
type rendererConfig struct {
	region     Region
	timeout    time.Duration
	settle     time.Duration
	browserBin string
	noSandbox  bool
}

// WithTimeout bounds load and capture of each job.
// Zero keeps the default; NewRenderer rejects negative values.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d != 0 {
			r.cfg.timeout = d
		}
	}
}

// WithSettle sets the quiet window used to detect network quiescence.
// Zero keeps the default; NewRenderer rejects negative values.
func WithSettle(d time.Duration) Option {
	return func(r *Renderer) {
		if d != 0 {
			r.cfg.settle = d
		}
	}
}

// WithRegion sets the capture region and viewport size.
func WithRegion(region Region) Option {
	return func(r *Renderer) {
		r.cfg.region = region
	}
}

// WithEngine selects the browser engine. Defaults to the rod engine.
func WithEngine(e Engine) Option {
	return func(r *Renderer) {
		r.engine = e
	}
}

// WithBrowserBin uses a specific Chrome/Chromium binary.
func WithBrowserBin(path string) Option {
	return func(r *Renderer) {
		r.cfg.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox (containers and CI).
func WithNoSandbox(noSandbox bool) Option {
	return func(r *Renderer) {
		r.cfg.noSandbox = noSandbox
	}
}

// WithLogger sets the structured logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress registers a callback invoked after every job.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Renderer) {
		r.progress = fn
	}
}
