package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg           string
	base          error   // the error this one was derived from
	wrappedErrors []error // causes, in the order they were attached
	statuscode    int
	retryable     bool
	suffix        string
}

// New creates a root error with the given message.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

func (e *appError) Error() string {
	if e.suffix != "" {
		return e.msg + ": " + e.suffix
	}
	return e.msg
}

// ErrorAll returns the message followed by every wrapped cause that is not
// part of the derivation chain of the receiver.
func (e *appError) ErrorAll() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.wrappedErrors {
		if err == e.base {
			continue
		}
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrappedErrors
}

func (e *appError) derive(msg string, errs []error) *appError {
	var wrapped []error
	if len(errs) > 0 {
		wrapped = append([]error{e}, errs...)
	}
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: wrapped,
		statuscode:    e.statuscode,
		retryable:     e.retryable,
	}
}

// New derives a new error kind. errors.Is(child, parent) holds for the result.
func (e *appError) New(msg string) Error {
	return e.derive(msg, nil)
}

func (e *appError) Msg(msg string) Error {
	return e.derive(msg, nil)
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return e.derive(msg, errs)
}

func (e *appError) Err(errs ...error) Error {
	return e.derive(e.msg, errs)
}

func (e *appError) Suffix(s string) Error {
	cp := *e
	cp.suffix = s
	return &cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func (e *appError) SetRetryable(flag bool) Error {
	cp := *e
	cp.retryable = flag
	return &cp
}

func (e *appError) Retryable() bool {
	return e.retryable
}

// Is matches the target against the derivation chain and every wrapped cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether err, or any Error it wraps, is marked retryable.
func IsRetryable(err error) bool {
	var ae Error
	if errors.As(err, &ae) {
		return ae.Retryable()
	}
	return false
}

// StatusCodeOf returns the status code of the first Error in err's chain, or 0.
func StatusCodeOf(err error) int {
	var ae Error
	if errors.As(err, &ae) {
		return ae.StatusCode()
	}
	return 0
}
