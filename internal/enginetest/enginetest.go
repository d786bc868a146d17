// Package enginetest provides an in-memory browser engine for tests.
// Pages "render" a document by painting a solid image whose color is
// derived from the document bytes, so identical inputs give identical PNGs.
package enginetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image/color"
	"net/url"
	"os"
	"path"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	html2png "github.com/alnah/go-html2png"
)

// Compile-time interface checks
var (
	_ html2png.Engine  = (*Engine)(nil)
	_ html2png.Session = (*session)(nil)
	_ html2png.Page    = (*page)(nil)
)

// Fault alters how one document behaves. Zero value means render normally.
type Fault struct {
	LoadErr    error
	CaptureErr error

	// HangLoad and HangCapture block until the job deadline expires.
	HangLoad    bool
	HangCapture bool

	// Panic makes Load panic.
	Panic bool

	// Width and Height override the captured size.
	Width, Height int

	// Garbage returns bytes that are not a PNG.
	Garbage bool

	// BeforeLoad runs at the start of Load, e.g. to cancel the run.
	BeforeLoad func()
}

// Engine is a fake html2png.Engine. Configure the exported fields before
// a run and read the recorded fields after it.
type Engine struct {
	LaunchErr    error
	NewPageErr   error
	PageCloseErr error
	CloseErr     error

	// FailNewPageAfter makes NewPage fail once that many pages were opened.
	// Zero disables it.
	FailNewPageAfter int

	// Faults are keyed by the document's base name.
	Faults map[string]Fault

	mu           sync.Mutex
	config       html2png.SessionConfig
	launches     int
	closes       int
	pages        int
	open         int
	maxOpen      int
	loaded       []string
	settleWindow time.Duration
}

// New returns a fake engine with no faults.
func New() *Engine {
	return &Engine{Faults: make(map[string]Fault)}
}

func (e *Engine) Name() string { return "fake" }

func (e *Engine) Launch(ctx context.Context, cfg html2png.SessionConfig) (html2png.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	e.config = cfg
	if e.LaunchErr != nil {
		return nil, e.LaunchErr
	}
	return &session{engine: e}, nil
}

// Launches returns how many sessions were launched.
func (e *Engine) Launches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches
}

// Closes returns how many sessions were closed.
func (e *Engine) Closes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closes
}

// Config returns the configuration of the last launch.
func (e *Engine) Config() html2png.SessionConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Pages returns how many pages were opened.
func (e *Engine) Pages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pages
}

// OpenPages returns how many pages are currently open.
func (e *Engine) OpenPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// MaxOpenPages returns the highest number of simultaneously open pages.
func (e *Engine) MaxOpenPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxOpen
}

// Loaded returns the base names of loaded documents in load order.
func (e *Engine) Loaded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loaded...)
}

// Settle returns the settle window passed to the last Load.
func (e *Engine) Settle() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settleWindow
}

type session struct {
	engine *Engine
}

func (s *session) NewPage(ctx context.Context) (html2png.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.NewPageErr != nil {
		return nil, e.NewPageErr
	}
	if e.FailNewPageAfter > 0 && e.pages >= e.FailNewPageAfter {
		return nil, errors.New("target crashed")
	}
	e.pages++
	e.open++
	e.maxOpen = max(e.maxOpen, e.open)
	return &page{engine: e}, nil
}

func (s *session) Close() error {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closes++
	return e.CloseErr
}

type page struct {
	engine *Engine
	name   string
	body   []byte
	closed bool
}

func (p *page) fault() Fault {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.engine.Faults[p.name]
}

func (p *page) Load(ctx context.Context, rawURL string, settle time.Duration) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "file" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	p.name = path.Base(u.Path)

	p.engine.mu.Lock()
	p.engine.loaded = append(p.engine.loaded, p.name)
	p.engine.settleWindow = settle
	p.engine.mu.Unlock()

	f := p.fault()
	if f.BeforeLoad != nil {
		f.BeforeLoad()
	}
	if f.Panic {
		panic("renderer crashed on " + p.name)
	}
	if f.HangLoad {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.LoadErr != nil {
		return f.LoadErr
	}

	body, err := os.ReadFile(u.Path) // #nosec G304 -- test documents
	if err != nil {
		return fmt.Errorf("net::ERR_FILE_NOT_FOUND: %w", err)
	}
	p.body = body
	return ctx.Err()
}

func (p *page) Capture(ctx context.Context, region html2png.Region) ([]byte, error) {
	f := p.fault()
	if f.HangCapture {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	if f.Garbage {
		return []byte("not a png"), nil
	}

	w, h := region.Width, region.Height
	if f.Width > 0 {
		w = f.Width
	}
	if f.Height > 0 {
		h = f.Height
	}
	return RenderPNG(p.body, w, h)
}

func (p *page) Close() error {
	e := p.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if !p.closed {
		p.closed = true
		e.open--
	}
	return e.PageCloseErr
}

// RenderPNG paints a w x h PNG in a color derived from body.
func RenderPNG(body []byte, w, h int) ([]byte, error) {
	hash := fnv.New32a()
	_, _ = hash.Write(body)
	sum := hash.Sum32()
	fill := color.NRGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(w, h, fill), imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
