package statetest

import "github.com/deepnoodle-ai/hostbridge"

// Op is one recorded State method call.
type Op struct {
	Name string
	Args []any
}

// Recorder wraps a State and records every method call made on it.
type Recorder struct {
	State hostbridge.State
	Ops   []Op
}

// Record wraps s.
func Record(s hostbridge.State) *Recorder {
	return &Recorder{State: s}
}

var _ hostbridge.State = (*Recorder)(nil)

func (r *Recorder) record(name string, args ...any) {
	r.Ops = append(r.Ops, Op{Name: name, Args: args})
}

// Names returns the recorded method names in order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		names[i] = op.Name
	}
	return names
}

// Count returns how many times the named method was called.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.Ops = nil
}

func (r *Recorder) GetTop() int {
	r.record("GetTop")
	return r.State.GetTop()
}

func (r *Recorder) SetTop(idx int) {
	r.record("SetTop", idx)
	r.State.SetTop(idx)
}

func (r *Recorder) GetGlobal(name string) {
	r.record("GetGlobal", name)
	r.State.GetGlobal(name)
}

func (r *Recorder) GetField(idx int, name string) {
	r.record("GetField", idx, name)
	r.State.GetField(idx, name)
}

func (r *Recorder) PushString(s string) {
	r.record("PushString", s)
	r.State.PushString(s)
}

func (r *Recorder) PushInteger(n int64) {
	r.record("PushInteger", n)
	r.State.PushInteger(n)
}

func (r *Recorder) RawGetRef(ref hostbridge.Ref) {
	r.record("RawGetRef", ref)
	r.State.RawGetRef(ref)
}

func (r *Recorder) Pop(n int) {
	r.record("Pop", n)
	r.State.Pop(n)
}

func (r *Recorder) Call(nargs, nresults int) error {
	r.record("Call", nargs, nresults)
	return r.State.Call(nargs, nresults)
}

func (r *Recorder) RefTask(task hostbridge.Task) hostbridge.Ref {
	ref := r.State.RefTask(task)
	r.record("RefTask", ref)
	return ref
}

func (r *Recorder) Unref(ref hostbridge.Ref) {
	r.record("Unref", ref)
	r.State.Unref(ref)
}
