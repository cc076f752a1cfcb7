package luastate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/host"
	lua "github.com/yuin/gopher-lua"
)

// RuntimeOptions configures a new Runtime
type RuntimeOptions struct {
	Names    hostbridge.Names
	Loop     *host.Loop
	Messages *host.MessageArea
	Logger   *slog.Logger
}

// Runtime is a Lua interpreter set up the way the host application sets it
// up: print writes to the message area and vim.schedule defers a function to
// the host loop.
type Runtime struct {
	L        *lua.LState
	state    *State
	names    hostbridge.Names
	loop     *host.Loop
	messages *host.MessageArea
	logger   *slog.Logger
}

// NewRuntime creates a Lua interpreter with the standard libraries and the
// host globals installed.
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

	L := lua.NewState()
	r := &Runtime{
		L:        L,
		state:    New(L),
		names:    opts.Names,
		loop:     opts.Loop,
		messages: opts.Messages,
		logger:   opts.Logger.With("backend", hostbridge.BackendLua),
	}
	r.install()
	return r, nil
}

func (r *Runtime) install() {
	r.L.SetGlobal(r.names.Print, r.L.NewFunction(r.print))

	table, ok := r.L.GetGlobal(r.names.DeferTable).(*lua.LTable)
	if !ok {
		table = r.L.NewTable()
		r.L.SetGlobal(r.names.DeferTable, table)
	}
	r.L.SetField(table, r.names.DeferField, r.L.NewFunction(r.schedule))
}

// print joins its arguments with tabs, like Lua's own print.
func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.messages.Emit(ctx, strings.Join(parts, "\t")); err != nil {
		L.RaiseError("%s: %s", r.names.Print, err.Error())
	}
	return 0
}

// schedule keeps the function value itself, so the caller may drop any
// registry reference it used to pass the function in.
func (r *Runtime) schedule(L *lua.LState) int {
	fn := L.CheckFunction(1)
	name := r.names.DeferTable + "." + r.names.DeferField
	_, err := r.loop.Enqueue(name, func() error {
		return r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		L.RaiseError("%s: %s", name, err.Error())
	}
	return 0
}

// State returns the bridge view of the interpreter.
func (r *Runtime) State() hostbridge.State {
	return r.state
}

// LuaState returns the concrete state, for inspecting the registry.
func (r *Runtime) LuaState() *State {
	return r.state
}

func (r *Runtime) Loop() *host.Loop {
	return r.loop
}

func (r *Runtime) Messages() *host.MessageArea {
	return r.messages
}

// Exec runs a chunk of Lua source.
func (r *Runtime) Exec(ctx context.Context, src string) error {
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("failed to execute lua chunk: %w", err)
	}
	return nil
}

// Close releases the interpreter.
func (r *Runtime) Close() error {
	r.L.Close()
	return nil
}
