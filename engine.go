package html2png

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/alnah/go-html2png/internal/process"
)

// Engine launches browser sessions. Engines are substitutable: the batch
// driver only talks to these interfaces, so tests run against a fake.
type Engine interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Launch starts one browser with one isolated browsing context.
	Launch(ctx context.Context, cfg SessionConfig) (Session, error)
}

// Session is one running browser shared by every job of a run.
// Close tears down the browser and every process it spawned.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a fresh render context used for exactly one job.
type Page interface {
	// Load navigates to url and returns once the load event fired and no
	// network request has been in flight for settle.
	Load(ctx context.Context, url string, settle time.Duration) error

	// Capture returns a PNG of the (0,0) anchored region at scale 1.
	Capture(ctx context.Context, region Region) ([]byte, error)

	Close() error
}

// SessionConfig is what an engine needs to launch a session.
// The viewport is sized to Region with a device scale factor of 1.
type SessionConfig struct {
	Region     Region
	BrowserBin string
	NoSandbox  bool
}

// Engine names accepted by EngineByName.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineRod

// EngineNames returns the names EngineByName accepts, default first.
func EngineNames() []string {
	return []string{EngineRod, EngineChromedp}
}

// EngineByName resolves a shipped engine. An empty name selects DefaultEngine.
func EngineByName(name string) (Engine, error) {
	switch name {
	case "", EngineRod:
		return NewRodEngine(), nil
	case EngineChromedp:
		return NewChromedpEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEngine, name, EngineNames())
	}
}

// IsEngineName reports whether name is accepted by EngineByName.
func IsEngineName(name string) bool {
	return name == "" || slices.Contains(EngineNames(), name)
}

// withEnvDefaults fills unset browser settings from ROD_BROWSER_BIN and
// ROD_NO_SANDBOX, which containers commonly export.
func (c SessionConfig) withEnvDefaults() SessionConfig {
	if c.BrowserBin == "" {
		c.BrowserBin = os.Getenv("ROD_BROWSER_BIN")
	}
	if !c.NoSandbox && os.Getenv("ROD_NO_SANDBOX") == "1" {
		c.NoSandbox = true
	}
	return c
}

// teardownGrace bounds how long Close waits for the browser to exit.
const teardownGrace = 5 * time.Second

// waitExited polls until pid is gone or grace elapses.
func waitExited(pid int, grace time.Duration) bool {
	deadline := time.Now().Add(grace)
	for process.Alive(pid) {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(50 * time.Millisecond)
	}
	return true
}
