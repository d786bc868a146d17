package html2png

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// renderableExtensions lists the source extensions picked up by Enumerate.
// Matching is case-insensitive.
var renderableExtensions = []string{".html", ".htm"}

// Enumerate lists the renderable documents directly inside dir and returns
// one job per document, ordered by CompareNames.
// Outputs go to outputDir, or next to each source when outputDir is empty.
// Subdirectories and other files are ignored.
func Enumerate(dir, outputDir string) ([]Job, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}

	var jobs []Job
	for _, e := range entries {
		if !IsRenderable(e.Name()) {
			continue
		}
		src := filepath.Join(dir, e.Name())
		if !isRegularFile(src, e) {
			continue
		}
		jobs = append(jobs, Job{Source: src, Output: OutputPath(src, outputDir)})
	}

	slices.SortFunc(jobs, func(a, b Job) int {
		return CompareNames(a.Source, b.Source)
	})
	return jobs, nil
}

// CompareNames orders source paths by base name, byte-wise, then by full
// path. It defines run order independently of directory listing order, so
// "01_cover.html" always precedes "02_point.html".
func CompareNames(a, b string) int {
	if c := strings.Compare(filepath.Base(a), filepath.Base(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// isRegularFile follows symlinks so linked documents are rendered too.
func isRegularFile(path string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsRenderable reports whether name has an HTML extension.
func IsRenderable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(renderableExtensions, ext)
}

// OutputPath derives the image path for a source document by replacing its
// extension with OutputExtension. The image lands in outputDir, or beside
// the source when outputDir is empty.
func OutputPath(source, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + OutputExtension
	if outputDir == "" {
		return filepath.Join(filepath.Dir(source), base)
	}
	return filepath.Join(outputDir, base)
}
