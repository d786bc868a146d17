package html2png

import (
	"context"
	"errors"
)

// Sentinel errors for library operations.
var (
	// Setup errors abort a run before any job starts.
	ErrSourceNotFound = errors.New("source not found")
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrUnknownEngine  = errors.New("unknown render engine")
	ErrInvalidJob     = errors.New("invalid render job")
	ErrInvalidRegion  = errors.New("invalid capture region")
	ErrInvalidTimeout = errors.New("invalid timeout")

	// Manifest errors.
	ErrManifestParse = errors.New("failed to parse manifest")
	ErrEmptyManifest = errors.New("manifest has no jobs")

	// Session errors abort the remaining jobs of a run.
	ErrContextAcquisition = errors.New("failed to acquire render context")
	ErrSessionTeardown    = errors.New("failed to tear down render session")

	// Job errors are recorded per job; the batch continues.
	ErrLoadTimeout = errors.New("document did not settle before timeout")
	ErrLoad        = errors.New("failed to load document")
	ErrCapture     = errors.New("failed to capture document")
	ErrPersist     = errors.New("failed to write image")

	// ErrDuplicateOutput fails every job of a batch that shares its output
	// path with another, e.g. card.html next to card.htm.
	ErrDuplicateOutput = errors.New("duplicate output path")
)

// Error kinds reported by ErrorKind.
const (
	KindSourceNotFound     = "SourceNotFound"
	KindBrowserLaunch      = "BrowserLaunchError"
	KindContextAcquisition = "ContextAcquisitionError"
	KindSessionTeardown    = "SessionTeardownError"
	KindLoadTimeout        = "LoadTimeoutError"
	KindLoad               = "LoadError"
	KindCapture            = "CaptureError"
	KindPersist            = "PersistError"
	KindDuplicateOutput    = "DuplicateOutputError"
	KindCanceled           = "Canceled"
	KindInternal           = "InternalError"
)

// ErrorKind returns the failure class of err, or "" for a nil error.
// Reports and progress output use it to name failures without parsing messages.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoadTimeout):
		return KindLoadTimeout
	case errors.Is(err, ErrLoad):
		return KindLoad
	case errors.Is(err, ErrCapture):
		return KindCapture
	case errors.Is(err, ErrPersist):
		return KindPersist
	case errors.Is(err, ErrDuplicateOutput):
		return KindDuplicateOutput
	case errors.Is(err, ErrContextAcquisition):
		return KindContextAcquisition
	case errors.Is(err, ErrSessionTeardown):
		return KindSessionTeardown
	case errors.Is(err, ErrBrowserLaunch):
		return KindBrowserLaunch
	case errors.Is(err, ErrSourceNotFound):
		return KindSourceNotFound
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}

// IsJobError reports whether err is a job-level failure that leaves the
// rest of the batch running.
func IsJobError(err error) bool {
	return errors.Is(err, ErrLoadTimeout) ||
		errors.Is(err, ErrLoad) ||
		errors.Is(err, ErrCapture) ||
		errors.Is(err, ErrPersist) ||
		errors.Is(err, ErrDuplicateOutput)
}
