// Package numerr defines the error classes raised by the numeric engine.
// Every failure is one of three kinds and is returned to the immediate caller;
// the engine never logs, retries, or substitutes a fallback value.
package numerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind uint8

const (
	// KindDomain: the operation is undefined for its inputs
	// (negative sqrt, log of non-positive, arccos outside [-1,1], negative discriminant, ζ(n<2)).
	KindDomain Kind = iota + 1
	// KindComputation: the inputs are in-domain but the result is undefined
	// at the active precision (division by zero, zero reference value).
	KindComputation
	// KindInvalidArgument: a caller-supplied parameter is malformed
	// (negative tolerance, non-positive digit count, unknown constant kind).
	KindInvalidArgument
)

// Sentinels matched with errors.Is.
var (
	ErrDomain          = errors.New("domain error")
	ErrComputation     = errors.New("computation error")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the concrete error returned by engine operations.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "sqrt" or "zeta"
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.sentinel(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.sentinel(), e.Msg)
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindDomain:
		return ErrDomain
	case KindComputation:
		return ErrComputation
	default:
		return ErrInvalidArgument
	}
}

// Domain returns a KindDomain error for op.
func Domain(op, format string, args ...any) error {
	return &Error{Kind: KindDomain, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Computation returns a KindComputation error for op.
func Computation(op, format string, args ...any) error {
	return &Error{Kind: KindComputation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns a KindInvalidArgument error for op.
func InvalidArgument(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 if err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// String names the kind the way the error taxonomy does.
func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "DomainError"
	case KindComputation:
		return "ComputationError"
	case KindInvalidArgument:
		return "InvalidArgumentError"
	default:
		return "unknown"
	}
}
