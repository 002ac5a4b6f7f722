// Package errkind provides error codes for the serialization engine's
// core packages. This is a leaf package with no internal dependencies,
// designed to be imported by ir, identity, registry, dispatcher, handlers,
// and reconnect without causing circular imports.
//
// Import graph: errkind <- ir <- registry <- dispatcher, handlers
package errkind

import "fmt"

// Code represents the category of error a core-package operation failed with.
type Code int

const (
	// CorruptIR indicates the wire-encoded IR bytes are malformed or fail
	// the format-version check.
	CorruptIR Code = iota + 1

	// UnknownHandler indicates no registered handler could resolve a value
	// or a type key encountered during deserialization.
	UnknownHandler

	// CycleBudgetExceeded indicates the identity tracker or dispatcher hit
	// an internal safety limit guarding against runaway recursion.
	CycleBudgetExceeded

	// ReconnectFailed indicates a Reconnector's Reconnect call returned an
	// error for a live-resource field.
	ReconnectFailed

	// InvalidAuthSpec indicates a decoded AuthMap entry failed validation.
	InvalidAuthSpec

	// UnsupportedKind indicates a reflect.Kind with no tier-0 through
	// tier-4 handler applies and the value isn't a plain struct either.
	UnsupportedKind

	// SchemaMismatch indicates an IR payload's format-version byte doesn't
	// match the engine build reading it, or a decoded record field's value
	// can't be assigned to the registered struct field's type.
	SchemaMismatch
)

// String returns a human-readable name for the error code.
func (c Code) String() string {
	switch c {
	case CorruptIR:
		return "CorruptIR"
	case UnknownHandler:
		return "UnknownHandler"
	case CycleBudgetExceeded:
		return "CycleBudgetExceeded"
	case ReconnectFailed:
		return "ReconnectFailed"
	case InvalidAuthSpec:
		return "InvalidAuthSpec"
	case UnsupportedKind:
		return "UnsupportedKind"
	case SchemaMismatch:
		return "SchemaMismatch"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// Error wraps an underlying cause with a Code and an optional path, the
// dotted/bracketed object-graph location the dispatcher was at when the
// error occurred (e.g. "root.Items[3].Handler").
type Error struct {
	Code  Code
	Msg   string
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap exposes Cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with no wrapped cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap creates an *Error wrapping an existing error.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// WithPath returns a copy of e with Path set, used by the dispatcher when
// it attaches the path stack to a propagating error.
func (e *Error) WithPath(path string) *Error {
	return &Error{Code: e.Code, Msg: e.Msg, Path: path, Cause: e.Cause}
}

// Is reports whether err carries the given Code, unwrapping through
// standard error chains.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Code == code
}
