package yamlutil_test

// Notes:
// - Marshal error branch: not tested because yaml.Marshal only fails with
//   unmarshalable types (channels, functions) which never reach it here.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-html2png/internal/yamlutil"
)

type testPair struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
}

type testManifest struct {
	Jobs []testPair `yaml:"jobs"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Parses YAML and JSON into Go structs
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "block YAML",
			data: []byte("jobs:\n  - source: a.html\n    output: a.png\n"),
			dest: &testManifest{},
			check: func(t *testing.T, v any) {
				m := v.(*testManifest)
				if len(m.Jobs) != 1 || m.Jobs[0].Source != "a.html" || m.Jobs[0].Output != "a.png" {
					t.Errorf("Jobs = %+v, want [{a.html a.png}]", m.Jobs)
				}
			},
		},
		{
			name: "JSON is accepted as YAML",
			data: []byte(`{"jobs": [{"source": "b.html", "output": "b.png"}]}`),
			dest: &testManifest{},
			check: func(t *testing.T, v any) {
				m := v.(*testManifest)
				if len(m.Jobs) != 1 || m.Jobs[0].Source != "b.html" {
					t.Errorf("Jobs = %+v, want [{b.html b.png}]", m.Jobs)
				}
			},
		},
		{
			name: "unicode paths",
			data: []byte("jobs:\n  - source: 카드_01.html\n"),
			dest: &testManifest{},
			check: func(t *testing.T, v any) {
				m := v.(*testManifest)
				if len(m.Jobs) != 1 || m.Jobs[0].Source != "카드_01.html" {
					t.Errorf("Jobs = %+v, want source 카드_01.html", m.Jobs)
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testManifest{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testManifest{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("jobs: []"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "invalid YAML syntax",
			data:    []byte("jobs: [unclosed"),
			dest:    &testManifest{},
			wantErr: errors.New("yamlutil:"), // partial match
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if errors.Is(err, tt.wantErr) {
					return
				}
				if !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Fatalf("error = %q, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	t.Run("known fields decode", func(t *testing.T) {
		t.Parallel()

		var p testPair
		if err := yamlutil.UnmarshalStrict([]byte("source: a.html\noutput: a.png"), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Source != "a.html" || p.Output != "a.png" {
			t.Errorf("pair = %+v, want {a.html a.png}", p)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		t.Parallel()

		var p testPair
		err := yamlutil.UnmarshalStrict([]byte("source: a.html\nsorce: typo.html"), &p)
		if err == nil {
			t.Fatal("expected error for unknown field, got nil")
		}
		if !strings.HasPrefix(err.Error(), "yamlutil:") {
			t.Errorf("error = %q, want prefix 'yamlutil:'", err)
		}
	})

	t.Run("lenient Unmarshal ignores the same field", func(t *testing.T) {
		t.Parallel()

		var p testPair
		if err := yamlutil.Unmarshal([]byte("source: a.html\nsorce: typo.html"), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMarshal - Serializes Go structs to YAML
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(&testManifest{Jobs: []testPair{{Source: "01_cover.html", Output: "01_cover.png"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(data)
	for _, want := range []string{"jobs:", "source: 01_cover.html", "output: 01_cover.png"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q, got:\n%s", want, s)
		}
	}

	var decoded testManifest
	if err := yamlutil.UnmarshalStrict(data, &decoded); err != nil {
		t.Fatalf("decoding marshaled output: %v", err)
	}
	if len(decoded.Jobs) != 1 || decoded.Jobs[0].Output != "01_cover.png" {
		t.Errorf("decoded = %+v", decoded)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Verifies MaxInputSize enforcement
// ---------------------------------------------------------------------------

// Note: This test modifies the global MaxInputSize variable, so it cannot
// run in parallel with other tests.

func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	t.Run("input exceeding limit fails", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := []byte("jobs:\n" + strings.Repeat("  - source: a.html\n", 10))
		var m testManifest
		err := yamlutil.Unmarshal(data, &m)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
	})

	t.Run("error message includes sizes", func(t *testing.T) {
		yamlutil.MaxInputSize = 50
		data := make([]byte, 100)
		var m testManifest
		err := yamlutil.Unmarshal(data, &m)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		msg := err.Error()
		if !strings.Contains(msg, "100 bytes") || !strings.Contains(msg, "max 50") {
			t.Errorf("error should contain both sizes, got: %s", msg)
		}
	})

	t.Run("UnmarshalStrict also enforces limit", func(t *testing.T) {
		yamlutil.MaxInputSize = 10
		var m testManifest
		err := yamlutil.UnmarshalStrict([]byte("jobs:\n  - source: a.html\n"), &m)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("errors.Is(err, ErrInputTooLarge) = false, got: %v", err)
		}
	})
}
