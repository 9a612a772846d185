package inequality

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is to classify a returned error.
var (
	// ErrDomain marks a violated numeric precondition (empty input, non-positive
	// mean or sum, log of a non-positive value, proportions not summing to 1,
	// fractional population counts).
	ErrDomain = errors.New("domain error")
	// ErrNotFound marks a named column missing from a tabular source.
	ErrNotFound = errors.New("not found")
	// ErrConfig marks an unrecognized index kind or mode.
	ErrConfig = errors.New("config error")
)

// Error carries the kind of failure together with the operation that raised it.
type Error struct {
	Kind error
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is reports whether target is the error kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// DomainError builds an ErrDomain error for op.
func DomainError(op, format string, args ...interface{}) error {
	return &Error{Kind: ErrDomain, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError builds an ErrNotFound error for op.
func NotFoundError(op, format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError builds an ErrConfig error for op.
func ConfigError(op, format string, args ...interface{}) error {
	return &Error{Kind: ErrConfig, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the sentinel kind of err, or nil when err is not one of ours.
func KindOf(err error) error {
	switch {
	case errors.Is(err, ErrDomain):
		return ErrDomain
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConfig):
		return ErrConfig
	}
	return nil
}
