//go:build integration

package html2png

// Notes:
// - Requires Chrome/Chromium. Rod downloads one on first run; the chromedp
//   engine needs ROD_BROWSER_BIN or a browser on PATH.
// - Each test launches its own session; they run sequentially to keep CI
//   memory bounded.
// - The process check reads the pid straight from the session, which is
//   why these tests live in the package itself.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/alnah/go-html2png/internal/process"
)

const testTimeout = 30 * time.Second

const redCard = `<!DOCTYPE html>
<html><head><style>
html, body { margin: 0; background: #ff0000; }
</style></head><body><h1>Cover</h1></body></html>`

// tallCard overflows the region; only the top square may be captured.
const tallCard = `<!DOCTYPE html>
<html><head><style>
body { margin: 0; }
.top { height: 1080px; background: #0000ff; }
.bottom { height: 2000px; background: #00ff00; }
</style></head><body><div class="top"></div><div class="bottom"></div></body></html>`

// lateCard is painted by a script once the document is parsed.
const lateCard = `<!DOCTYPE html>
<html><head><style>html, body { margin: 0; background: #ffffff; }</style></head>
<body><script>
document.addEventListener("DOMContentLoaded", () => {
  document.body.style.background = "#00ff00";
});
</script></body></html>`

func writeCard(t *testing.T, dir, name, html string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(html), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// pixelAt decodes the PNG at path and returns the 8-bit RGB at (x, y).
func pixelAt(t *testing.T, path string, x, y int) (uint8, uint8, uint8) {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestRun_Integration(t *testing.T) {
	for _, name := range EngineNames() {
		t.Run(name, func(t *testing.T) {
			eng, err := EngineByName(name)
			if err != nil {
				t.Fatalf("EngineByName() error = %v", err)
			}

			src, out := t.TempDir(), t.TempDir()
			writeCard(t, src, "01_cover.html", redCard)
			writeCard(t, src, "02_tall.html", tallCard)
			writeCard(t, src, "03_late.html", lateCard)

			jobs, err := Enumerate(src, out)
			if err != nil {
				t.Fatalf("Enumerate() error = %v", err)
			}
			jobs = append(jobs, Job{Source: filepath.Join(src, "04_missing.html"), Output: filepath.Join(out, "04_missing.png")})

			r, err := NewRenderer(WithEngine(eng), WithTimeout(testTimeout))
			if err != nil {
				t.Fatalf("NewRenderer() error = %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			sum, err := r.Run(ctx, jobs)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if sum.Succeeded() != 3 || sum.Failed() != 1 {
				for _, o := range sum.Outcomes {
					t.Logf("%s: %v", filepath.Base(o.Job.Source), o.Err)
				}
				t.Fatalf("summary = %d ok, %d failed, want 3 ok, 1 failed", sum.Succeeded(), sum.Failed())
			}
			if !errors.Is(sum.Outcomes[3].Err, ErrLoad) {
				t.Errorf("missing document error = %v, want ErrLoad", sum.Outcomes[3].Err)
			}

			for _, name := range []string{"01_cover.png", "02_tall.png", "03_late.png"} {
				img, err := imaging.Open(filepath.Join(out, name))
				if err != nil {
					t.Fatalf("opening %s: %v", name, err)
				}
				if size := img.Bounds().Size(); size.X != 1080 || size.Y != 1080 {
					t.Errorf("%s is %dx%d, want 1080x1080", name, size.X, size.Y)
				}
			}

			if r, g, b := pixelAt(t, filepath.Join(out, "01_cover.png"), 540, 1000); r < 0xf0 || g > 0x10 || b > 0x10 {
				t.Errorf("cover pixel = (%d,%d,%d), want red", r, g, b)
			}
			if r, g, b := pixelAt(t, filepath.Join(out, "02_tall.png"), 540, 1079); b < 0xf0 || r > 0x10 || g > 0x10 {
				t.Errorf("tall card bottom edge = (%d,%d,%d), want blue (overflow cropped)", r, g, b)
			}
			if r, g, b := pixelAt(t, filepath.Join(out, "03_late.png"), 10, 10); g < 0xf0 || r > 0x10 || b > 0x10 {
				t.Errorf("late card pixel = (%d,%d,%d), want green", r, g, b)
			}
		})
	}
}

func TestRun_Integration_Idempotent(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeCard(t, src, "01_cover.html", redCard)
	jobs, _ := Enumerate(src, out)

	r, err := NewRenderer(WithTimeout(testTimeout))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	var runs [][]byte
	for i := range 2 {
		if _, err := r.Run(context.Background(), jobs); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
		data, err := os.ReadFile(filepath.Join(out, "01_cover.png"))
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		runs = append(runs, data)
	}
	if !bytes.Equal(runs[0], runs[1]) {
		t.Error("rerun produced a different image")
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want 1", len(entries))
	}
}

func TestSession_Integration_NoProcessSurvives(t *testing.T) {
	tests := []struct {
		name string
		pid  func(Session) int
	}{
		{name: EngineRod, pid: func(s Session) int { return s.(*rodSession).pid }},
		{name: EngineChromedp, pid: func(s Session) int { return s.(*chromedpSession).pid }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := EngineByName(tt.name)
			sess, err := eng.Launch(context.Background(), SessionConfig{Region: DefaultRegion()})
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			pid := tt.pid(sess)
			if !process.Alive(pid) {
				t.Fatalf("browser pid %d not alive after launch", pid)
			}

			page, err := sess.NewPage(context.Background())
			if err != nil {
				t.Fatalf("NewPage() error = %v", err)
			}
			_ = page.Close()

			if err := sess.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if process.Alive(pid) {
				t.Errorf("browser pid %d alive after Close", pid)
			}
		})
	}
}

func TestPage_Integration_LoadTimeout(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	writeCard(t, src, "01_cover.html", redCard)
	jobs, _ := Enumerate(src, out)

	// A settle window longer than the deadline can never be satisfied.
	r, err := NewRenderer(WithTimeout(2*time.Second), WithSettle(5*time.Second))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	sum, err := r.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !errors.Is(sum.Outcomes[0].Err, ErrLoadTimeout) {
		t.Errorf("error = %v, want ErrLoadTimeout", sum.Outcomes[0].Err)
	}
	if _, err := os.Stat(filepath.Join(out, "01_cover.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("image written for a timed-out job")
	}
}
