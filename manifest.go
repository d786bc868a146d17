package html2png

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-html2png/internal/yamlutil"
)

// manifestEntry is one source/output pair. The html/png keys are accepted
// as aliases so pair lists written by older screenshot scripts load as-is.
type manifestEntry struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	HTML   string `yaml:"html"`
	PNG    string `yaml:"png"`
}

// manifestFile is the documented manifest shape:
//
//	jobs:
//	  - source: _html/01_cover.html
//	    output: 01_cover.png
type manifestFile struct {
	Jobs []manifestEntry `yaml:"jobs"`
}

// LoadManifest reads a YAML or JSON manifest and returns its jobs in file
// order. Relative paths resolve against the manifest's directory.
func LoadManifest(path string) ([]Job, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifest path is user-provided
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: manifest %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest decodes manifest content. It accepts either a document with
// a top-level "jobs" list or a bare list of entries. Entries without an
// output get one derived from the source with OutputPath.
func ParseManifest(data []byte, baseDir string) ([]Job, error) {
	entries, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyManifest
	}

	jobs := make([]Job, 0, len(entries))
	for i, e := range entries {
		job, err := e.toJob(baseDir)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i+1, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// decodeManifest tries the documented shape first, then a bare list.
func decodeManifest(data []byte) ([]manifestEntry, error) {
	var file manifestFile
	fileErr := yamlutil.UnmarshalStrict(data, &file)
	if fileErr == nil {
		return file.Jobs, nil
	}
	if errors.Is(fileErr, yamlutil.ErrNilData) {
		return nil, ErrEmptyManifest
	}

	var list []manifestEntry
	if err := yamlutil.UnmarshalStrict(data, &list); err == nil {
		return list, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrManifestParse, fileErr)
}

func (e manifestEntry) toJob(baseDir string) (Job, error) {
	src := firstNonEmpty(e.Source, e.HTML)
	out := firstNonEmpty(e.Output, e.PNG)
	if src == "" {
		return Job{}, fmt.Errorf("%w: missing source", ErrInvalidJob)
	}

	src = resolveAgainst(baseDir, src)
	if out == "" {
		out = OutputPath(src, "")
	} else {
		out = resolveAgainst(baseDir, out)
	}
	return Job{Source: src, Output: out}, nil
}

func resolveAgainst(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
