package html2png_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	html2png "github.com/alnah/go-html2png"
)

// ---------------------------------------------------------------------------
// TestParseManifest - Manifest shapes
// ---------------------------------------------------------------------------

func TestParseManifest(t *testing.T) {
	t.Parallel()

	base := filepath.Join("work", "cards")

	tests := []struct {
		name string
		data string
		want []html2png.Job
	}{
		{
			name: "jobs document",
			data: "jobs:\n  - source: _html/02.html\n    output: 02.png\n  - source: _html/01.html\n    output: 01.png\n",
			want: []html2png.Job{
				{Source: filepath.Join(base, "_html", "02.html"), Output: filepath.Join(base, "02.png")},
				{Source: filepath.Join(base, "_html", "01.html"), Output: filepath.Join(base, "01.png")},
			},
		},
		{
			name: "bare list with html/png keys",
			data: `[{"html": "_html/cover.html", "png": "cover.png"}]`,
			want: []html2png.Job{
				{Source: filepath.Join(base, "_html", "cover.html"), Output: filepath.Join(base, "cover.png")},
			},
		},
		{
			name: "missing output is derived",
			data: "- source: _html/cta.html\n",
			want: []html2png.Job{
				{Source: filepath.Join(base, "_html", "cta.html"), Output: filepath.Join(base, "_html", "cta.png")},
			},
		},
		{
			name: "absolute paths kept",
			data: "jobs:\n  - source: /srv/a.html\n    output: /srv/out/a.png\n",
			want: []html2png.Job{
				{Source: filepath.Clean("/srv/a.html"), Output: filepath.Clean("/srv/out/a.png")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := html2png.ParseManifest([]byte(tt.data), base)
			if err != nil {
				t.Fatalf("ParseManifest() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("jobs = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseManifest_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "empty file", data: "", wantErr: html2png.ErrEmptyManifest},
		{name: "empty jobs", data: "jobs: []\n", wantErr: html2png.ErrEmptyManifest},
		{name: "empty list", data: "[]", wantErr: html2png.ErrEmptyManifest},
		{name: "entry without source", data: "jobs:\n  - output: a.png\n", wantErr: html2png.ErrInvalidJob},
		{name: "unknown top-level key", data: "pairs:\n  - source: a.html\n", wantErr: html2png.ErrManifestParse},
		{name: "misspelled entry key", data: "- sorce: a.html\n", wantErr: html2png.ErrManifestParse},
		{name: "not yaml", data: "jobs: [unclosed", wantErr: html2png.ErrManifestParse},
		{name: "scalar", data: "just text", wantErr: html2png.ErrManifestParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := html2png.ParseManifest([]byte(tt.data), "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseManifest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadManifest - File loading
// ---------------------------------------------------------------------------

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	if err := os.WriteFile(path, []byte("jobs:\n  - source: a.html\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	jobs, err := html2png.LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	want := html2png.Job{Source: filepath.Join(dir, "a.html"), Output: filepath.Join(dir, "a.png")}
	if len(jobs) != 1 || jobs[0] != want {
		t.Errorf("jobs = %+v, want [%+v]", jobs, want)
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	t.Parallel()

	_, err := html2png.LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, html2png.ErrSourceNotFound) {
		t.Errorf("LoadManifest() error = %v, want ErrSourceNotFound", err)
	}
}
