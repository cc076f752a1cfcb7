package gojastate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/host"
	"github.com/dop251/goja"
)

// RuntimeOptions configures a new Runtime
type RuntimeOptions struct {
	Names    hostbridge.Names
	Loop     *host.Loop
	Messages *host.MessageArea
	Logger   *slog.Logger
}

// Runtime is a goja VM with the host globals installed: print writes to the
// message area and vim.schedule defers a function to the loop.
type Runtime struct {
	vm       *goja.Runtime
	state    *State
	names    hostbridge.Names
	loop     *host.Loop
	messages *host.MessageArea
	logger   *slog.Logger
}

// NewRuntime creates a goja VM with the host globals installed.
func NewRuntime(opts RuntimeOptions) (*Runtime, error) {
	opts.Names = opts.Names.WithDefaults()
	if err := opts.Names.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Loop == nil {
		opts.Loop = host.NewLoop(host.LoopOptions{Logger: opts.Logger})
	}
	if opts.Messages == nil {
		opts.Messages = host.NewMessageArea(host.MessageAreaOptions{Logger: opts.Logger})
	}

	vm := goja.New()
	r := &Runtime{
		vm:       vm,
		state:    New(vm),
		names:    opts.Names,
		loop:     opts.Loop,
		messages: opts.Messages,
		logger:   opts.Logger.With("backend", hostbridge.BackendGoja),
	}
	if err := r.install(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) install() error {
	if err := r.vm.Set(r.names.Print, r.print); err != nil {
		return fmt.Errorf("failed to set %s: %w", r.names.Print, err)
	}
	table := r.vm.NewObject()
	if err := table.Set(r.names.DeferField, r.schedule); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", r.names.DeferTable, r.names.DeferField, err)
	}
	if err := r.vm.Set(r.names.DeferTable, table); err != nil {
		return fmt.Errorf("failed to set %s: %w", r.names.DeferTable, err)
	}
	return nil
}

func (r *Runtime) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = arg.String()
	}
	if err := r.messages.Emit(context.Background(), strings.Join(parts, "\t")); err != nil {
		panic(r.vm.NewGoError(err))
	}
	return goja.Undefined()
}

// schedule keeps the function value itself, not a registry key.
func (r *Runtime) schedule(call goja.FunctionCall) goja.Value {
	name := r.names.DeferTable + "." + r.names.DeferField
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(r.vm.NewTypeError("%s expects a function", name))
	}
	_, err := r.loop.Enqueue(name, func() error {
		_, err := fn(goja.Undefined())
		return err
	})
	if err != nil {
		panic(r.vm.NewGoError(fmt.Errorf("%s: %w", name, err)))
	}
	return goja.Undefined()
}

// State returns the bridge view of the runtime.
func (r *Runtime) State() hostbridge.State {
	return r.state
}

// GojaState returns the concrete state, for inspecting the registry.
func (r *Runtime) GojaState() *State {
	return r.state
}

func (r *Runtime) Loop() *host.Loop {
	return r.loop
}

func (r *Runtime) Messages() *host.MessageArea {
	return r.messages
}

// Exec runs JavaScript source. Cancelling ctx interrupts the script.
func (r *Runtime) Exec(ctx context.Context, src string) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			r.vm.Interrupt("execution cancelled")
		case <-done:
		}
	}()

	_, err := r.vm.RunString(src)
	close(done)
	<-stopped
	r.vm.ClearInterrupt()
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			return fmt.Errorf("execution interrupted: %s", interrupted.Value())
		}
		return fmt.Errorf("execution error: %w", err)
	}
	return nil
}

// Close is a no-op; the VM is garbage collected.
func (r *Runtime) Close() error {
	return nil
}
