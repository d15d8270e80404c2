package obfx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrKeyNotFound          = errors.New("obfuscation key not found")

	// Format errors
	ErrUnknownFormat   = errors.New("unsupported format")
	ErrFormatDetection = errors.New("cannot detect format from filename")
	ErrMissingHeader   = errors.New("csv input has no header row")

	// Capability errors
	ErrFormatNotImplemented = errors.New("format not yet implemented")

	// Boundary errors
	ErrInvalidRequest       = errors.New("invalid request")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrStorageUnavailable   = errors.New("object storage unavailable")
	ErrSecretsUnavailable   = errors.New("secret storage unavailable")
	ErrDatabaseUnavailable  = errors.New("database unavailable")
)

// NewUnknownFormatError reports a format tag outside the supported set.
func NewUnknownFormatError(format string) error {
	return fmt.Errorf("%w: %q (supported formats: %s)",
		ErrUnknownFormat, format, strings.Join(FormatTags(), ", "))
}

// NewFormatDetectionError reports a filename whose extension maps to no
// known format tag.
func NewFormatDetectionError(filename string) error {
	return fmt.Errorf("%w: %q (recognized extensions: .csv, .json, .jsonl, .ndjson, .parquet, .pq)",
		ErrFormatDetection, filename)
}

// IsConfigurationError returns true if the error represents a configuration
// problem the caller must fix before retrying (missing key, bad option).
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrInvalidRequest)
}

// IsFormatError returns true if the error represents malformed or
// unrecognized input structure.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrUnknownFormat) ||
		errors.Is(err, ErrFormatDetection) ||
		errors.Is(err, ErrMissingHeader)
}

// IsCapabilityError returns true if the error reports a format that is
// recognized but not implemented yet.
func IsCapabilityError(err error) bool {
	return errors.Is(err, ErrFormatNotImplemented)
}

// IsAuthError returns true if the error represents an authentication
// problem against an external secret or storage service.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// IsRetryableError returns true if the error represents a transient failure
// that might succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrSecretsUnavailable) ||
		errors.Is(err, ErrDatabaseUnavailable)
}
