package api

import (
	"errors"
	"fmt"

	"github.com/okian/evalsheet/internal/adapters/grid"
)

// Sentinel kinds for API errors.
var (
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// opError decorates an error with the operation that produced it. Error()
// stays the plain message so envelopes never leak operation names.
type opError struct {
	Op  string
	Err error
}

func (e *opError) Error() string { return e.Err.Error() }

func (e *opError) Unwrap() error { return e.Err }

// Wrap attaches op to err for logging. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{Op: op, Err: err}
}

// NewKind reports a sentinel kind from op.
func NewKind(op string, kind error) error {
	return &opError{Op: op, Err: kind}
}

// Op returns the innermost operation recorded by Wrap, or "".
func Op(err error) string {
	var oe *opError
	op := ""
	for errors.As(err, &oe) {
		op = oe.Op
		err = oe.Err
	}
	return op
}

// errorType labels err for metrics.
func errorType(err error) string {
	switch {
	case errors.Is(err, grid.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrMethodNotAllowed):
		return "method_not_allowed"
	default:
		return "internal"
	}
}

// describe renders err for logs as "op: message".
func describe(err error) string {
	if op := Op(err); op != "" {
		return fmt.Sprintf("%s: %s", op, err.Error())
	}
	return err.Error()
}
