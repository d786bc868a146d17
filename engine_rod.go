package html2png

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2png/internal/process"
)

// Compile-time interface checks
var (
	_ Engine  = (*rodEngine)(nil)
	_ Session = (*rodSession)(nil)
	_ Page    = (*rodPage)(nil)
)

// rodEngine drives Chrome through go-rod.
// Rod downloads Chromium on first run if no binary is found.
type rodEngine struct{}

// NewRodEngine returns the go-rod engine.
func NewRodEngine() Engine {
	return rodEngine{}
}

func (rodEngine) Name() string { return EngineRod }

// Launch starts Chrome in its own process group, connects to it and opens
// an incognito browser context that every page of the session shares.
func (rodEngine) Launch(ctx context.Context, cfg SessionConfig) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg = cfg.withEnvDefaults()

	// Leakless is off: the session kills the whole process group itself.
	l := launcher.New().Leakless(false).Headless(true)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, err
	}
	s := &rodSession{launcher: l, pid: l.PID(), region: cfg.Region}

	s.browser = rod.New().ControlURL(u).NoDefaultDevice()
	if err := s.browser.Connect(); err != nil {
		s.kill()
		return nil, err
	}

	s.incognito, err = s.browser.Incognito()
	if err != nil {
		_ = s.browser.Close()
		s.kill()
		return nil, err
	}
	return s, nil
}

// rodSession owns one Chrome process and one incognito context.
type rodSession struct {
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
	pid       int
	region    Region
}

// NewPage opens a blank tab in the incognito context sized to the region.
func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	p, err := s.incognito.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	err = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.region.Width,
		Height:            s.region.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("setting viewport: %w", err)
	}
	return &rodPage{page: p}, nil
}

// Close disposes the incognito context, closes the browser and kills the
// process group. It fails only if the browser outlives the grace period.
func (s *rodSession) Close() error {
	var errs []error
	if s.incognito != nil {
		if err := s.incognito.Close(); err != nil {
			errs = append(errs, fmt.Errorf("disposing browser context: %w", err))
		}
	}
	if s.browser != nil {
		// Chrome drops the websocket while exiting, so a close error here
		// is expected and not reported.
		_ = s.browser.Close()
	}
	s.kill()

	if !waitExited(s.pid, teardownGrace) {
		errs = append(errs, fmt.Errorf("browser process %d still running", s.pid))
		return errors.Join(errs...)
	}
	return nil
}

func (s *rodSession) kill() {
	s.launcher.Kill()
	process.KillProcessGroup(s.pid)

	// Cleanup blocks until the process is reaped; bound it.
	done := make(chan struct{})
	go func() {
		s.launcher.Cleanup()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(teardownGrace):
	}
}

// rodPage wraps one tab.
type rodPage struct {
	page *rod.Page
}

// Load registers the request-idle watcher before navigating so requests
// issued during parsing are counted.
func (p *rodPage) Load(ctx context.Context, url string, settle time.Duration) error {
	page := p.page.Context(ctx)

	waitIdle := page.WaitRequestIdle(settle, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	waitIdle()

	// waitIdle returns on cancellation without reporting it.
	return ctx.Err()
}

func (p *rodPage) Capture(ctx context.Context, region Region) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      0,
			Y:      0,
			Width:  float64(region.Width),
			Height: float64(region.Height),
			Scale:  1,
		},
		FromSurface: true,
	})
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
