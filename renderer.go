package html2png

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// File modes for written images and created output directories.
const (
	outputFilePerm = 0o644
	outputDirPerm  = 0o755
)

// Renderer turns HTML documents into fixed-size PNG images.
// Create with NewRenderer and call Run once per batch. A Renderer holds no
// browser between runs, so it needs no Close.
type Renderer struct {
	cfg      rendererConfig
	engine   Engine
	logger   *slog.Logger
	progress ProgressFunc
}

// NewRenderer creates a Renderer with default configuration: the rod engine,
// a 1080x1080 region, a 30s per-job timeout and a 500ms settle window.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			region:  DefaultRegion(),
			timeout: DefaultTimeout,
			settle:  DefaultSettle,
		},
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.cfg.region.Validate(); err != nil {
		return nil, err
	}
	if r.cfg.timeout < 0 {
		return nil, fmt.Errorf("%w: timeout %s is negative", ErrInvalidTimeout, r.cfg.timeout)
	}
	if r.cfg.settle < 0 {
		return nil, fmt.Errorf("%w: settle %s is negative", ErrInvalidTimeout, r.cfg.settle)
	}
	if r.engine == nil {
		r.engine = NewRodEngine()
	}
	return r, nil
}

// Engine returns the engine the renderer launches sessions with.
func (r *Renderer) Engine() Engine {
	return r.engine
}

// Run renders jobs in order within one browser session and reports every
// outcome. A failing job is recorded and the batch moves on; only setup
// failures, session failures and cancellation stop the run early, in which
// case the jobs that never ran are recorded with the stopping error.
//
// The returned Summary is never nil. The error is nil when the batch ran to
// completion, even if some jobs failed: inspect Summary.Status for that.
// The browser is torn down before Run returns; a teardown failure is joined
// into the returned error.
func (r *Renderer) Run(ctx context.Context, jobs []Job) (sum *Summary, err error) {
	sum = &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, 0, len(jobs)),
	}
	log := r.logger.With("run_id", sum.RunID, "engine", r.engine.Name())
	defer func() {
		sum.Duration = time.Since(sum.StartedAt)
		log.Info("run finished",
			"total", sum.Total(),
			"succeeded", sum.Succeeded(),
			"failed", sum.Failed(),
			"duration", sum.Duration)
	}()

	if err := ValidateJobs(jobs); err != nil {
		sum.abort(jobs, 0, err)
		return sum, err
	}
	if len(jobs) == 0 {
		return sum, nil
	}
	r.sweepTemps(log, jobs)

	shared := sharedOutputs(jobs)
	if len(shared) == len(jobs) {
		for i, job := range jobs {
			r.record(log, sum, len(jobs), Outcome{Index: i, Job: job, Err: shared[i]})
		}
		return sum, nil
	}

	if err := ctx.Err(); err != nil {
		sum.abort(jobs, 0, err)
		return sum, err
	}

	log.Debug("launching browser", "region", r.cfg.region.String(), "jobs", len(jobs))
	session, err := r.engine.Launch(ctx, SessionConfig{
		Region:     r.cfg.region,
		BrowserBin: r.cfg.browserBin,
		NoSandbox:  r.cfg.noSandbox,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			err = fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
		sum.abort(jobs, 0, err)
		return sum, err
	}

	pool := newContextPool(session)
	defer func() {
		if closeErr := pool.Close(); closeErr != nil {
			log.Error("session teardown failed", "error", closeErr)
			err = errors.Join(err, fmt.Errorf("%w: %v", ErrSessionTeardown, closeErr))
		}
	}()

	for i, job := range jobs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("run interrupted", "remaining", len(jobs)-i)
			sum.abort(jobs, i, ctxErr)
			return sum, ctxErr
		}
		if dupErr, ok := shared[i]; ok {
			r.record(log, sum, len(jobs), Outcome{Index: i, Job: job, Err: dupErr})
			continue
		}

		page, err := pool.Acquire(ctx)
		if err != nil {
			log.Error("acquiring render context failed", "source", job.Source, "error", err)
			sum.abort(jobs, i, err)
			return sum, err
		}

		start := time.Now()
		jobErr := r.renderJob(ctx, page, job)
		if closeErr := pool.Release(page); closeErr != nil {
			log.Warn("closing page failed", "source", job.Source, "error", closeErr)
		}
		r.record(log, sum, len(jobs), Outcome{Index: i, Job: job, Err: jobErr, Duration: time.Since(start)})
	}
	return sum, nil
}

// record appends o to the summary, logs it and reports progress.
func (r *Renderer) record(log *slog.Logger, sum *Summary, total int, o Outcome) {
	sum.Outcomes = append(sum.Outcomes, o)
	if o.OK() {
		log.Debug("rendered", "source", o.Job.Source, "output", o.Job.Output, "duration", o.Duration)
	} else {
		log.Warn("job failed", "source", o.Job.Source, "kind", ErrorKind(o.Err), "error", o.Err)
	}
	if r.progress != nil {
		r.progress(o.Index+1, total, o)
	}
}

// renderJob runs load, capture and persist for one job.
// Recovers from engine panics so one bad document cannot end the batch.
func (r *Renderer) renderJob(ctx context.Context, page Page, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if _, err := os.Stat(job.Source); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	target, err := FileURL(job.Source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()

	if err := page.Load(jobCtx, target, r.cfg.settle); err != nil {
		return r.classify(ctx, jobCtx, ErrLoad, err)
	}
	if err := jobCtx.Err(); err != nil {
		return r.classify(ctx, jobCtx, ErrLoad, err)
	}

	data, err := page.Capture(jobCtx, r.cfg.region)
	if err != nil {
		return r.classify(ctx, jobCtx, ErrCapture, err)
	}
	data, err = fitRegion(data, r.cfg.region)
	if err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(job.Output, data, outputFilePerm, outputDirPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// classify maps an engine error to its job-level sentinel. Cancellation of
// the run wins over everything; an expired job deadline is a timeout
// whichever step it interrupted.
func (r *Renderer) classify(runCtx, jobCtx context.Context, sentinel, err error) error {
	if runErr := runCtx.Err(); runErr != nil {
		return runErr
	}
	if errors.Is(jobCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: exceeded %s", ErrLoadTimeout, r.cfg.timeout)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// sweepTemps removes leftovers of interrupted writes from every output
// directory of the run. Failures only cost disk space and are logged.
func (r *Renderer) sweepTemps(log *slog.Logger, jobs []Job) {
	seen := make(map[string]bool)
	for _, j := range jobs {
		dir := filepath.Dir(j.Output)
		if seen[dir] {
			continue
		}
		seen[dir] = true

		n, err := fileutil.RemoveStaleTemps(dir)
		if err != nil {
			log.Warn("removing stale temp files failed", "dir", dir, "error", err)
		}
		if n > 0 {
			log.Info("removed stale temp files", "dir", dir, "count", n)
		}
	}
}

// abort records jobs[from:] as not attempted because of err.
func (s *Summary) abort(jobs []Job, from int, err error) {
	for i := from; i < len(jobs); i++ {
		s.Outcomes = append(s.Outcomes, Outcome{Index: i, Job: jobs[i], Err: err, Skipped: true})
	}
}

// ValidateJobs checks a batch before anything runs: every job needs a source
// and an output, and an output may not overwrite its own source.
// Jobs sharing an output are not rejected here; Run fails each of them
// individually and renders the rest.
func ValidateJobs(jobs []Job) error {
	for i, j := range jobs {
		if strings.TrimSpace(j.Source) == "" {
			return fmt.Errorf("%w: job %d has no source", ErrInvalidJob, i+1)
		}
		if strings.TrimSpace(j.Output) == "" {
			return fmt.Errorf("%w: job %d has no output", ErrInvalidJob, i+1)
		}

		if normalizePath(j.Output) == normalizePath(j.Source) {
			return fmt.Errorf("%w: job %d would overwrite its source %s", ErrInvalidJob, i+1, j.Source)
		}
	}
	return nil
}

// sharedOutputs maps the index of every job whose output path is also
// written by another job to its ErrDuplicateOutput. None of the colliding
// jobs is rendered, since no single one of them is clearly the intended
// source.
func sharedOutputs(jobs []Job) map[int]error {
	byOutput := make(map[string][]int, len(jobs))
	for i, j := range jobs {
		out := normalizePath(j.Output)
		byOutput[out] = append(byOutput[out], i)
	}

	shared := make(map[int]error)
	for _, idx := range byOutput {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			shared[i] = fmt.Errorf("%w: %s is also written by %s", ErrDuplicateOutput,
				jobs[i].Output, otherSources(jobs, idx, i))
		}
	}
	return shared
}

func otherSources(jobs []Job, idx []int, self int) string {
	var names []string
	for _, i := range idx {
		if i != self {
			names = append(names, jobs[i].Source)
		}
	}
	return strings.Join(names, ", ")
}

func normalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// FileURL returns the file:// URL a browser loads path from.
// Relative paths are resolved against the working directory.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x on Windows
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}
