// Package apperrors provides chainable error values for the client. An Error
// carries a message, the errors it was derived from, a status code (HTTP
// status or a server supplied error code) and a retryable flag that callers
// use to decide whether an operation may be attempted again.
package apperrors

// Error extends the standard error interface with derivation and wrapping
// helpers. All methods return a new Error; the receiver is never modified.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derives a new error kind from the receiver
	Msg(msg string) Error                  // replaces the message and wraps the receiver
	MsgErr(msg string, err ...error) Error // replaces the message and wraps extra causes
	Err(err ...error) Error                // attaches causes while keeping the message
	SetStatusCode(int) Error               // sets the status code
	StatusCode() int                       // returns the status code
	SetRetryable(bool) Error               // marks the error as transient or permanent
	Retryable() bool                       // reports whether retrying may succeed
	Suffix(string) Error                   // appends context to the message
	ErrorAll() string                      // message followed by all wrapped causes
	UnwrapAll() []error                    // returns all wrapped causes
}
