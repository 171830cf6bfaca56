package staticfs

import "errors"

// Sentinel errors.
var (
	// ErrNotFound is returned when a path is absent from the index or
	// filesystem.
	ErrNotFound = errors.New("staticfs: not found")

	// ErrFormat is returned when package bytes are malformed: truncated
	// header, record overrun, or an invalid path. Decode errors are fatal
	// at load time; there is no partial recovery.
	ErrFormat = errors.New("staticfs: malformed package")

	// ErrInvalidRange is returned when a Range header value does not parse.
	// Callers serve the full resource with status 200 instead of failing
	// the request.
	ErrInvalidRange = errors.New("staticfs: invalid range header")

	// ErrMultipartRange is returned when a Range header requests multiple
	// ranges. Multipart ranges are not supported; callers fall back to the
	// full resource with status 200.
	ErrMultipartRange = errors.New("staticfs: multipart ranges not supported")
)
