package hostbridge

import (
	"errors"
	"fmt"
)

// ErrorKind classifies bridge failures.
type ErrorKind string

const (
	// ErrorKindInvalidArgument is used when an argument cannot be encoded
	// for the interpreter, for example text with an embedded nul byte.
	// Nothing has been pushed when this is returned.
	ErrorKindInvalidArgument ErrorKind = "invalid_argument"

	// ErrorKindInterpreterCallFailed wraps an error raised by the
	// interpreter during a call. The stack is balanced again by the time
	// it is returned.
	ErrorKindInterpreterCallFailed ErrorKind = "interpreter_call_failed"

	// ErrorKindClosureConsumed is returned when a one-shot closure is
	// invoked a second time.
	ErrorKindClosureConsumed ErrorKind = "closure_consumed"

	// ErrorKindStackUnderflow is returned by emulated stacks when a call
	// asks for more arguments than are present.
	ErrorKindStackUnderflow ErrorKind = "stack_underflow"
)

// Sentinels for use with errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidArgument       = &Error{Kind: ErrorKindInvalidArgument}
	ErrInterpreterCallFailed = &Error{Kind: ErrorKindInterpreterCallFailed}
	ErrClosureConsumed       = &Error{Kind: ErrorKindClosureConsumed}
	ErrStackUnderflow        = &Error{Kind: ErrorKindStackUnderflow}
)

// Error is a classified bridge error. It supports errors.Is and errors.As
// and unwraps to the interpreter error when there is one.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Cause   string    `json:"cause"`
	Wrapped error     `json:"-"`
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, cause string) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Cause == "" && t.Wrapped == nil && t.Kind == e.Kind
}

// ClassifyError converts any error into an *Error. Errors that are already
// classified are returned as is. Anything else came out of the interpreter.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}
	var bridgeErr *Error
	if errors.As(err, &bridgeErr) {
		return bridgeErr
	}
	return &Error{
		Kind:    ErrorKindInterpreterCallFailed,
		Cause:   err.Error(),
		Wrapped: err,
	}
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).Kind == kind
}
