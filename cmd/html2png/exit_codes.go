package main

import (
	"context"
	"errors"
	"os"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
)

// Exit codes for the html2png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, custom codes < 126,
// and 128+SIGINT for interruption.
const (
	ExitSuccess     = 0   // Every document rendered
	ExitGeneral     = 1   // General/unexpected error
	ExitUsage       = 2   // Invalid flags, config, manifest, or batch
	ExitIO          = 3   // Source missing, permission denied, report not written
	ExitBrowser     = 4   // Browser launch, page creation, or teardown failed
	ExitPartial     = 5   // Batch completed but some documents failed
	ExitInterrupted = 130 // Canceled by SIGINT/SIGTERM
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Cancellation wins: the remaining jobs never ran (exit 130)
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	// Browser errors (exit 4)
	if errors.Is(err, html2png.ErrBrowserLaunch) ||
		errors.Is(err, html2png.ErrContextAcquisition) ||
		errors.Is(err, html2png.ErrSessionTeardown) {
		return ExitBrowser
	}

	// Partial success (exit 5)
	if errors.Is(err, ErrJobsFailed) {
		return ExitPartial
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, html2png.ErrSourceNotFound) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) ||
		errors.Is(err, ErrWriteReport) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, html2png.ErrInvalidJob) ||
		errors.Is(err, html2png.ErrManifestParse) ||
		errors.Is(err, html2png.ErrEmptyManifest) ||
		errors.Is(err, html2png.ErrUnknownEngine) ||
		errors.Is(err, html2png.ErrInvalidRegion) ||
		errors.Is(err, html2png.ErrInvalidTimeout) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
