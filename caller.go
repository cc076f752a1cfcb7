package hostbridge

import "fmt"

// PrintGlobal is the host global that writes to the message area.
const PrintGlobal = "print"

// CallGlobal pushes the named global and args onto the stack and calls it,
// discarding any results.
//
// Text is validated before the state is touched, so an invalid argument
// results in ErrInvalidArgument with no interpreter interaction at all. When
// the interpreter raises an error the stack is restored to the depth it had
// on entry and the error is returned as ErrInterpreterCallFailed.
func CallGlobal(s State, name string, args ...Value) error {
	if err := validateText("global name", name); err != nil {
		return err
	}
	for i, arg := range args {
		if arg == nil {
			return NewError(ErrorKindInvalidArgument, fmt.Sprintf("argument %d is nil", i+1))
		}
		if err := arg.validate(); err != nil {
			return err
		}
	}

	top := s.GetTop()
	s.GetGlobal(name)
	for _, arg := range args {
		arg.push(s)
	}
	if err := s.Call(len(args), 0); err != nil {
		s.SetTop(top)
		return &Error{
			Kind:    ErrorKindInterpreterCallFailed,
			Cause:   fmt.Sprintf("call to %s failed: %s", name, err),
			Wrapped: err,
		}
	}
	return nil
}

// Print writes text to the host's message area through the print global.
// It fails if text contains a nul byte.
func Print(s State, text string) error {
	return CallGlobal(s, PrintGlobal, String(text))
}

// Printf formats its arguments like fmt.Sprintf and prints the result.
// Any failure is dropped.
func Printf(s State, format string, args ...any) {
	_ = Print(s, fmt.Sprintf(format, args...))
}
