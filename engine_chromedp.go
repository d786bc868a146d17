package html2png

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Compile-time interface checks
var (
	_ Engine  = (*chromedpEngine)(nil)
	_ Session = (*chromedpSession)(nil)
	_ Page    = (*chromedpPage)(nil)
)

// chromeIdleWindow is how long Chrome waits without network connections
// before it emits the networkIdle lifecycle event.
const chromeIdleWindow = 500 * time.Millisecond

// chromedpEngine drives Chrome through chromedp and raw cdproto commands.
type chromedpEngine struct{}

// NewChromedpEngine returns the chromedp engine. It needs a local Chrome
// install; unlike rod it never downloads one.
func NewChromedpEngine() Engine {
	return chromedpEngine{}
}

func (chromedpEngine) Name() string { return EngineChromedp }

// Launch starts Chrome with a throwaway profile and opens the first tab,
// which keeps the browser alive between jobs.
func (chromedpEngine) Launch(ctx context.Context, cfg SessionConfig) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg = cfg.withEnvDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(cfg.Region.Width, cfg.Region.Height),
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.BrowserBin != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BrowserBin))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	// The allocator outlives ctx: only Close ends the session.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	s := &chromedpSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		region:        cfg.Region,
	}
	if c := chromedp.FromContext(browserCtx); c != nil && c.Browser != nil {
		if p := c.Browser.Process(); p != nil {
			s.pid = p.Pid
		}
	}
	return s, nil
}

type chromedpSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	pid           int
	region        Region
}

// NewPage opens a new tab and applies the viewport.
func (s *chromedpSession) NewPage(ctx context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	p := &chromedpPage{tabCtx: tabCtx, tabCancel: tabCancel}

	// The first Run on a context creates its target and binds the target's
	// lifetime to that context, so it must be the tab context itself.
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx)
	stop()
	if err != nil {
		tabCancel()
		return nil, err
	}

	err = p.run(ctx,
		chromedp.EmulateViewport(int64(s.region.Width), int64(s.region.Height), chromedp.EmulateScale(1)),
		page.SetLifecycleEventsEnabled(true),
	)
	if err != nil {
		tabCancel()
		return nil, err
	}
	return p, nil
}

// Close shuts Chrome down gracefully, then cancels the allocator, which
// kills the process and removes the temporary profile.
func (s *chromedpSession) Close() error {
	var errs []error
	if err := chromedp.Cancel(s.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	s.browserCancel()
	s.allocCancel()

	if s.pid > 0 && !waitExited(s.pid, teardownGrace) {
		errs = append(errs, fmt.Errorf("browser process %d still running", s.pid))
	}
	return errors.Join(errs...)
}

// chromedpPage is one tab. Each call runs on a child of the tab context
// that also honors the caller's deadline, so cancelling a job never closes
// the tab from under Close.
type chromedpPage struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
}

func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Load navigates the main frame and waits for its networkIdle lifecycle
// event. Chrome fires it after chromeIdleWindow without connections; a
// longer settle window is topped up with a plain wait.
func (p *chromedpPage) Load(ctx context.Context, url string, settle time.Duration) error {
	idle := newIdleWatcher()
	chromedp.ListenTarget(p.tabCtx, idle.observe)

	return p.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			idle.start(tree.Frame.ID)
			return nil
		}),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			select {
			case <-idle.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if extra := settle - chromeIdleWindow; extra > 0 {
				return chromedp.Sleep(extra).Do(ctx)
			}
			return nil
		}),
	)
}

func (p *chromedpPage) Capture(ctx context.Context, region Region) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{
				X:      0,
				Y:      0,
				Width:  float64(region.Width),
				Height: float64(region.Height),
				Scale:  1,
			}).
			WithFromSurface(true).
			Do(ctx)
		return err
	}))
	return buf, err
}

// Close closes the tab and waits for Chrome to confirm.
func (p *chromedpPage) Close() error {
	err := chromedp.Cancel(p.tabCtx)
	p.tabCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// idleWatcher turns lifecycle events into a one-shot signal for the
// navigation started after start. Events from subframes and from the
// previous document are ignored.
type idleWatcher struct {
	mu      sync.Mutex
	frame   cdp.FrameID
	loader  cdp.LoaderID
	started bool
	once    sync.Once
	done    chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{done: make(chan struct{})}
}

func (w *idleWatcher) start(frame cdp.FrameID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame = frame
	w.started = true
}

// observe runs on chromedp's event loop and must not block.
func (w *idleWatcher) observe(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started || e.FrameID != w.frame {
		return
	}
	switch e.Name {
	case "init":
		w.loader = e.LoaderID
	case "networkIdle":
		if w.loader != "" && e.LoaderID == w.loader {
			w.once.Do(func() { close(w.done) })
		}
	}
}
