// Package agenterr defines the structured error taxonomy used across agentroot-go.
package agenterr

import (
	"errors"
	"fmt"
)

// Code identifies which member of the error taxonomy (spec §7) produced an Error.
type Code string

const (
	// NotFound — collection, document, content blob, or virtual-path component absent.
	NotFound Code = "not_found"
	// InvalidInput — malformed virtual path, unknown option, pattern parse failure, bad filter syntax.
	InvalidInput Code = "invalid_input"
	// IO — filesystem read/write, walking.
	IO Code = "io"
	// Catalog — embedded-store error.
	Catalog Code = "catalog"
	// Parse — AST grammar or metadata/link JSON parse failure. Always recovered internally;
	// surfaced only when a caller explicitly asks for the underlying cause.
	Parse Code = "parse"
	// Collaborator — embedder/reranker/expander/metadata failure. Always recovered by the
	// ranking pipeline's downgrade path; never fatal to a search.
	Collaborator Code = "collaborator"
	// Cancelled — user or caller cancellation.
	Cancelled Code = "cancelled"
	// Config — missing required configuration for a collaborator.
	Config Code = "config"
)

// Error is the structured error type threaded through core. It carries enough
// context (Code, a human Message, an optional Cause, and arbitrary Details) for
// a collaborator to decide how to react without parsing message strings.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so callers can do
// errors.Is(err, &agenterr.Error{Code: agenterr.NotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail attaches a key/value pair and returns the receiver for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New constructs an Error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that carries an underlying cause.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf constructs an Error with a formatted message and an underlying cause.
func Wrapf(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the Code from err, returning ok=false if err is not (or does
// not wrap) an *Error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Is reports whether err carries the given Code anywhere in its chain.
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// ExitCode maps a Code to the exit code a CLI collaborator should use (spec §7):
// 0 success, 2 not-found, 3 invalid-input, 1 otherwise. A nil err maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch c, _ := CodeOf(err); c {
	case NotFound:
		return 2
	case InvalidInput:
		return 3
	default:
		return 1
	}
}
