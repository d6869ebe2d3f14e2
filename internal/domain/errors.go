package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can decide between retrying,
// rejecting, and logging.
type ErrorKind string

const (
	// KindValidation marks malformed input: bad dates, non-positive totals,
	// missing required fields. Never retried.
	KindValidation ErrorKind = "validation"
	// KindTransient marks a store failure that may succeed on retry.
	KindTransient ErrorKind = "transient"
	// KindConsistency marks state that violates an aggregate invariant, such as
	// dangling occurrence references. Logged, never surfaced as a failure.
	KindConsistency ErrorKind = "consistency"
	// KindNotFound marks a missing routine, task, or cadence record.
	KindNotFound ErrorKind = "not_found"
)

// Error is the single domain error type crossing the engine boundary. Raw
// store errors are wrapped before they escape.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation name and kind.
func E(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validationf builds a validation error from a format string.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of err, or KindTransient when err carries no kind.
// Unclassified errors are treated as transient so the retrying executor gives
// the store the benefit of the doubt.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTransient
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
