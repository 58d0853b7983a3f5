package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Submission errors, surfaced synchronously before a task is created
	ErrInvalidRequest      = fmt.Errorf("invalid request")
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")

	// Extraction errors, captured into the task's failed state
	ErrProbeFailed       = fmt.Errorf("metadata probe failed")
	ErrDownloadFailed    = fmt.Errorf("download failed")
	ErrFallbackExhausted = fmt.Errorf("download failed after fallback")

	// Lookup errors
	ErrNotFound = fmt.Errorf("not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
