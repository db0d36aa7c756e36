// Package diag has the error and warning types shared by the converter,
// the completion driver and the reconciler.
//
// Fatal problems come back as *Error with a Kind, so a caller can tell
// bad input from an engine failure from an inconsistent structure.
// Problems that only degrade the result are Warnings. They are collected
// and logged, and never stop a run.
package diag

import (
	"errors"
	"fmt"
)

// Kind says what sort of fatal error we have.
type Kind byte

const (
	KindIO          Kind = iota // reading or writing a file that should be fine
	KindInput                   // missing file, no identifier in a sequence file, ...
	KindEngine                  // completion engine produced nothing
	KindConsistency             // original and completed structures do not agree
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input validation"
	case KindEngine:
		return "completion engine failure"
	case KindConsistency:
		return "structural consistency"
	default:
		return "i/o"
	}
}

// Error is a fatal error with its Kind, the operation that failed and,
// where there is one, the file involved.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	s := e.Op
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind. The message is formatted
// as with fmt.Errorf, so %w works.
func New(kind Kind, op, path string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}

// Wrap puts err inside an *Error. A nil err gives nil.
func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindIO, false
}

// IsKind reports if err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
