// Package apperr classifies failures so the HTTP layer can pick a status code
// without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindPathNotAllowed
	KindNotFound
	KindInvalidInput
	KindIOFailure
	KindDecodeFailure
)

func (k Kind) String() string {
	switch k {
	case KindPathNotAllowed:
		return "path_not_allowed"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindIOFailure:
		return "io_failure"
	case KindDecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

// ErrPathNotAllowed is the fixed rejection returned whenever a caller supplied
// path falls outside every configured mount point.
var ErrPathNotAllowed = errors.New("path not allowed")

// Error carries a Kind alongside the operation and path that failed.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, msg)
	default:
		return msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// NotAllowed is the Path Guard rejection for path.
func NotAllowed(op, path string) *Error {
	return &Error{Kind: KindPathNotAllowed, Op: op, Path: path, Err: ErrPathNotAllowed}
}

// Invalid reports a missing or malformed request field.
func Invalid(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain. Errors that
// carry no Kind but wrap ErrPathNotAllowed are still reported as such.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrPathNotAllowed) {
		return KindPathNotAllowed
	}
	return KindUnknown
}

// Is reports whether err is of kind k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
