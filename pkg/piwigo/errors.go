package piwigo

import (
	"fmt"

	"github.com/pwgsync/pwgsync/internal/common/apperrors"
)

// Error definitions for the package.
// All errors are derived from ErrPiwigo.
var (
	// ErrPiwigo is the base error for the package.
	ErrPiwigo = apperrors.New("piwigo client error")

	// ErrInvalidConfig is returned when the client configuration fails validation.
	ErrInvalidConfig = ErrPiwigo.New("invalid client configuration")

	// ErrTransport is returned when no usable response was received:
	// DNS, connect, TLS, timeout, or an HTTP error status without an envelope.
	// Callers may retry at their discretion.
	ErrTransport = ErrPiwigo.New("transport error").SetRetryable(true)

	// ErrProtocol is returned when the body is not JSON or not a valid envelope.
	// It indicates an incompatible server and is not retryable.
	ErrProtocol = ErrPiwigo.New("protocol error")

	// ErrAPI is returned when the server replies with stat "fail".
	// The error message is the server supplied message and the status code
	// is the server's err code.
	ErrAPI = ErrPiwigo.New("api error")

	// ErrAuth is returned when login fails.
	ErrAuth = ErrAPI.New("authentication failed")

	// ErrNotAuthenticated is returned when a method that needs a session is
	// called before login. No request is sent.
	ErrNotAuthenticated = ErrAuth.New("not authenticated")

	// ErrInvalidPath is returned when a category path contains no names.
	ErrInvalidPath = ErrPiwigo.New("invalid category path")
)

// SegmentError reports which segment of a category path could not be resolved.
type SegmentError struct {
	Path    string
	Segment string
	Index   int // zero based position of Segment in the split path
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("resolving %q at segment %d (%q): %v", e.Path, e.Index, e.Segment, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a transient failure that the caller may retry.
func IsRetryable(err error) bool {
	return apperrors.IsRetryable(err)
}

// ErrorCode returns the server err code or HTTP status carried by err, or 0.
func ErrorCode(err error) int {
	return apperrors.StatusCodeOf(err)
}
