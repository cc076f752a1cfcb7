// Package statetest provides a scripted interpreter for testing code that
// drives a hostbridge.State.
package statetest

import (
	"fmt"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/internal/emustack"
)

// Func is a callable value of the fake interpreter.
type Func func(args []any) ([]any, error)

// Table is an indexable value of the fake interpreter.
type Table map[string]any

// Engine is an emustack engine whose values are plain Go values.
type Engine struct {
	Globals map[string]any
}

func (e *Engine) Nil() any { return nil }

func (e *Engine) IsNil(v any) bool { return v == nil }

func (e *Engine) Global(name string) any {
	return e.Globals[name]
}

func (e *Engine) Field(obj any, name string) any {
	if t, ok := obj.(Table); ok {
		return t[name]
	}
	return nil
}

func (e *Engine) String(s string) any { return s }

func (e *Engine) Integer(n int64) any { return n }

func (e *Engine) Func(fn func() error) any {
	return Func(func(args []any) ([]any, error) {
		return nil, fn()
	})
}

func (e *Engine) Call(fn any, args []any) ([]any, error) {
	f, ok := fn.(Func)
	if !ok {
		return nil, fmt.Errorf("attempt to call a %T value", fn)
	}
	return f(args)
}

// Host is a fake host application: a print global that records messages
// and a vim.schedule that queues functions until Drain is called.
type Host struct {
	*emustack.Machine[any]

	Engine   *Engine
	Messages []string
	Queue    []Func

	// PrintErr, when set, is raised by print instead of recording.
	PrintErr error
	// ScheduleErr, when set, is raised by vim.schedule instead of queueing.
	ScheduleErr error
}

// NewHost creates a fake host with the default host globals installed.
func NewHost() *Host {
	h := &Host{Engine: &Engine{Globals: map[string]any{}}}
	h.Machine = emustack.New[any](h.Engine)
	h.Engine.Globals[hostbridge.PrintGlobal] = Func(h.print)
	h.Engine.Globals[hostbridge.DeferTable] = Table{
		hostbridge.DeferField: Func(h.schedule),
	}
	return h
}

func (h *Host) print(args []any) ([]any, error) {
	if h.PrintErr != nil {
		return nil, h.PrintErr
	}
	text := ""
	for i, arg := range args {
		if i > 0 {
			text += "\t"
		}
		text += fmt.Sprint(arg)
	}
	h.Messages = append(h.Messages, text)
	return nil, nil
}

func (h *Host) schedule(args []any) ([]any, error) {
	if h.ScheduleErr != nil {
		return nil, h.ScheduleErr
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("schedule expects 1 argument, got %d", len(args))
	}
	fn, ok := args[0].(Func)
	if !ok {
		return nil, fmt.Errorf("schedule expects a function, got %T", args[0])
	}
	h.Queue = append(h.Queue, fn)
	return nil, nil
}

// Drain invokes every queued function once, in order, and returns their
// errors.
func (h *Host) Drain() []error {
	queue := h.Queue
	h.Queue = nil
	var errs []error
	for _, fn := range queue {
		if _, err := fn(nil); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
