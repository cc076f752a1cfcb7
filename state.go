package hostbridge

// Ref is a key into the interpreter's persistent reference registry.
type Ref int

const (
	// NoRef is returned when nothing was registered.
	NoRef Ref = -2

	// NilRef refers to nil. Pushing it always yields nil.
	NilRef Ref = -1
)

// MultRet asks Call to keep every result the callee returns.
const MultRet = -1

// State is the subset of an interpreter's stack API the bridge relies on.
//
// Indices follow the usual stack conventions: positive indices count from the
// bottom of the current frame starting at 1, negative indices count from the
// top with -1 being the topmost value.
//
// A State is not safe for concurrent use. Every method must be called from
// the goroutine that owns the interpreter.
type State interface {
	// GetTop returns the index of the top element, which is also the
	// number of values on the stack.
	GetTop() int

	// SetTop truncates the stack, or pads it with nils, so that idx becomes
	// the top index. Negative values are relative to the current top.
	SetTop(idx int)

	// GetGlobal pushes the value of the named global, or nil.
	GetGlobal(name string)

	// GetField pushes t[name] where t is the value at idx. When that value
	// cannot be indexed nil is pushed instead of raising an error.
	GetField(idx int, name string)

	PushString(s string)
	PushInteger(n int64)

	// RawGetRef pushes the value stored in the registry under ref, or nil
	// if the slot is empty.
	RawGetRef(ref Ref)

	// Pop removes n values from the top of the stack.
	Pop(n int)

	// Call calls the function sitting below the top nargs values. The
	// function and its arguments are always removed. On success nresults
	// values are pushed (all of them for MultRet). On failure nothing is
	// pushed and the interpreter error is returned.
	Call(nargs, nresults int) error

	// RefTask stores an interpreter function wrapping task in the registry
	// and returns its key. The task is not invoked. The wrapper runs the
	// task at most once no matter how many times the interpreter calls it.
	RefTask(task Task) Ref

	// Unref releases the registry slot. Keys are never handed out again.
	Unref(ref Ref)
}
