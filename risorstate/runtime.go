package risorstate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/host"
	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"
)

// RuntimeOptions configures a new Runtime
type RuntimeOptions struct {
	Names    hostbridge.Names
	Loop     *host.Loop
	Messages *host.MessageArea
	Logger   *slog.Logger
}

// Runtime is a Risor environment with the host globals installed: print
// writes to the message area and vim.schedule defers a callable to the loop.
type Runtime struct {
	state    *State
	globals  map[string]object.Object
	names    hostbridge.Names
	loop     *host.Loop
	messages *host.MessageArea
	logger   *slog.Logger
}

// NewRuntime creates a Risor runtime with the host globals installed.
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

	globals := map[string]object.Object{}
	r := &Runtime{
		state:    New(context.Background(), globals),
		globals:  globals,
		names:    opts.Names,
		loop:     opts.Loop,
		messages: opts.Messages,
		logger:   opts.Logger.With("backend", hostbridge.BackendRisor),
	}
	globals[opts.Names.Print] = object.NewBuiltin(opts.Names.Print, r.print)
	globals[opts.Names.DeferTable] = object.NewMap(map[string]object.Object{
		opts.Names.DeferField: object.NewBuiltin(opts.Names.DeferField, r.schedule),
	})
	return r, nil
}

func (r *Runtime) print(ctx context.Context, args ...object.Object) object.Object {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, Text(arg))
	}
	if err := r.messages.Emit(ctx, strings.Join(parts, "\t")); err != nil {
		return object.NewError(err)
	}
	return object.Nil
}

// schedule keeps the callable itself. The scheduling call's context is
// kept too, since Risor functions need it to find their VM.
func (r *Runtime) schedule(ctx context.Context, args ...object.Object) object.Object {
	name := r.names.DeferTable + "." + r.names.DeferField
	if len(args) != 1 {
		return object.Errorf("%s: expected 1 argument, got %d", name, len(args))
	}
	fn, ok := args[0].(object.Callable)
	if !ok {
		return object.Errorf("%s: expected a function, got %s", name, args[0].Type())
	}
	_, err := r.loop.Enqueue(name, func() error {
		return callError(fn.Call(ctx))
	})
	if err != nil {
		return object.Errorf("%s: %s", name, err.Error())
	}
	return object.Nil
}

// State returns the bridge view of the runtime.
func (r *Runtime) State() hostbridge.State {
	return r.state
}

// RisorState returns the concrete state, for inspecting the registry.
func (r *Runtime) RisorState() *State {
	return r.state
}

func (r *Runtime) Loop() *host.Loop {
	return r.loop
}

func (r *Runtime) Messages() *host.MessageArea {
	return r.messages
}

// Exec evaluates Risor source with the runtime's globals.
func (r *Runtime) Exec(ctx context.Context, src string) error {
	globals := make(map[string]any, len(r.globals))
	for name, value := range r.globals {
		globals[name] = value
	}
	if _, err := risor.Eval(ctx, src, risor.WithGlobals(globals)); err != nil {
		return fmt.Errorf("failed to evaluate risor script: %w", err)
	}
	return nil
}

// Close is a no-op; Risor holds no resources between evaluations.
func (r *Runtime) Close() error {
	return nil
}
