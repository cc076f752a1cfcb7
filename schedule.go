package hostbridge

import "fmt"

const (
	// DeferTable is the host global holding the scheduling entry point.
	DeferTable = "vim"

	// DeferField is the field of DeferTable that accepts a function and
	// invokes it later from the host's event loop.
	DeferField = "schedule"
)

// Schedule hands task to the host scheduler (vim.schedule). The task runs
// later on the host's own loop, never inside Schedule. Scheduling is fire
// and forget: failures are not reported.
func Schedule(s State, task Task) {
	_, _ = ScheduleOn(s, DeferTable, DeferField, task)
}

// ScheduleOn registers task, passes a reference to it to table.field and
// releases the registry slot once that call returns. It returns the key the
// task was registered under (already released) and the outcome of the
// deferral call.
//
// The registry slot only lives for the duration of ScheduleOn. The host's
// deferral function must keep hold of the function value it receives rather
// than of the registry key.
func ScheduleOn(s State, table, field string, task Task) (Ref, error) {
	if err := validateText("defer table", table); err != nil {
		return NoRef, err
	}
	if err := validateText("defer field", field); err != nil {
		return NoRef, err
	}
	if task == nil {
		return NoRef, NewError(ErrorKindInvalidArgument, "task is nil")
	}

	top := s.GetTop()

	// table.field goes below the argument; table itself stays underneath.
	s.GetGlobal(table)
	s.GetField(-1, field)

	ref := s.RefTask(task)
	defer s.Unref(ref)
	s.RawGetRef(ref)

	if err := s.Call(1, 0); err != nil {
		s.SetTop(top)
		return ref, &Error{
			Kind:    ErrorKindInterpreterCallFailed,
			Cause:   fmt.Sprintf("call to %s.%s failed: %s", table, field, err),
			Wrapped: err,
		}
	}

	// The call consumed the function and the reference; drop the table.
	s.Pop(1)
	return ref, nil
}
