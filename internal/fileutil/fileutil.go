// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TempSuffix marks in-flight writes. Files carrying it are never final outputs
// and may be swept by RemoveStaleTemps.
const TempSuffix = ".html2png-tmp"

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrPathIsDir   = errors.New("path is a directory")
	ErrInvalidMode = errors.New("invalid file mode")
)

// WriteFileAtomic writes data to path so that readers either see the previous
// file or the complete new one, never a partial write. Data goes to a
// hidden temp file in the same directory, is synced, then renamed over path.
// Missing parent directories are created with dirPerm.
func WriteFileAtomic(path string, data []byte, perm, dirPerm os.FileMode) (err error) {
	if path == "" {
		return ErrEmptyPath
	}
	if perm == 0 {
		return ErrInvalidMode
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathIsDir, path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*"+TempSuffix)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// RemoveStaleTemps deletes temp files left in dir by writes that never
// reached their rename, e.g. after the process was killed. It returns the
// number of files removed. A missing dir is not an error.
func RemoveStaleTemps(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, ".*"+TempSuffix))
	if err != nil {
		return 0, err
	}

	var errs []error
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// IsTempFile reports whether name was produced by WriteFileAtomic.
func IsTempFile(name string) bool {
	return strings.HasSuffix(name, TempSuffix)
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "cards" -> false (config name)
//   - "./cards.yaml" -> true (relative path)
//   - "/etc/html2png/cards.yaml" -> true (absolute)
//   - "C:\configs\cards.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// IsDirWritable checks that a file can be created in dir.
func IsDirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".probe-*"+TempSuffix)
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
