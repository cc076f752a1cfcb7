package hostbridge

import (
	"fmt"
	"strings"
)

// Value is an argument CallGlobal knows how to push. Only primitive values
// are supported: String, Integer and Ref.
type Value interface {
	push(s State)
	validate() error
}

// String is pushed as an interpreter string. It must not contain NUL.
type String string

// Integer is pushed as an interpreter number.
type Integer int64

func (v String) push(s State) { s.PushString(string(v)) }

func (v String) validate() error {
	return validateText("string argument", string(v))
}

func (v Integer) push(s State) { s.PushInteger(int64(v)) }

func (v Integer) validate() error { return nil }

// A Ref argument pushes the registry entry it points at, not the key.
func (r Ref) push(s State) { s.RawGetRef(r) }

func (r Ref) validate() error {
	if r == NoRef {
		return NewError(ErrorKindInvalidArgument, "reference argument is NoRef")
	}
	return nil
}

// validateText rejects strings that cannot cross a NUL-terminated boundary.
func validateText(what, text string) error {
	if i := strings.IndexByte(text, 0); i >= 0 {
		return NewError(ErrorKindInvalidArgument,
			fmt.Sprintf("%s contains a nul byte at position %d", what, i))
	}
	return nil
}
