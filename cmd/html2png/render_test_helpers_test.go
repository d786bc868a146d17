package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/enginetest"
)

// testEnv bundles an Environment with its captured output and fake engine.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	engine *enginetest.Engine
	asked  []string // engine names passed to NewEngine
}

func newTestEnv() *testEnv {
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		engine: enginetest.New(),
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewEngine: func(name string) (html2png.Engine, error) {
			te.asked = append(te.asked, name)
			return te.engine, nil
		},
	}
	return te
}

// writeCards creates HTML documents named after files in dir.
func writeCards(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	for _, name := range names {
		body := "<html><body>" + name + "</body></html>"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func assertExists(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}
}

func assertNotExists(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			t.Errorf("expected %s not to exist", p)
		}
	}
}
