package hostbridge

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Names holds the host globals the bridge talks to.
type Names struct {
	Print      string `json:"print" yaml:"print"`
	DeferTable string `json:"defer_table" yaml:"defer_table"`
	DeferField string `json:"defer_field" yaml:"defer_field"`
}

// DefaultNames returns the names of the Neovim host convention.
func DefaultNames() Names {
	return Names{
		Print:      PrintGlobal,
		DeferTable: DeferTable,
		DeferField: DeferField,
	}
}

// WithDefaults fills every empty name from DefaultNames.
func (n Names) WithDefaults() Names {
	defaults := DefaultNames()
	if n.Print == "" {
		n.Print = defaults.Print
	}
	if n.DeferTable == "" {
		n.DeferTable = defaults.DeferTable
	}
	if n.DeferField == "" {
		n.DeferField = defaults.DeferField
	}
	return n
}

// Validate checks that every name is set and can be passed to the
// interpreter.
func (n Names) Validate() error {
	for _, name := range []struct{ what, value string }{
		{"print global", n.Print},
		{"defer table", n.DeferTable},
		{"defer field", n.DeferField},
	} {
		if name.value == "" {
			return NewError(ErrorKindInvalidArgument, name.what+" is empty")
		}
		if err := validateText(name.what, name.value); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a new Bridge
type Options struct {
	State     State
	Names     Names
	Logger    *slog.Logger
	Callbacks Callbacks
}

// Bridge binds a State to a set of host names, a logger and callbacks. It
// borrows the state and never closes it. Like the state, a Bridge must only
// be used from the goroutine that owns the interpreter.
type Bridge struct {
	state     State
	names     Names
	logger    *slog.Logger
	callbacks Callbacks
}

// New creates a Bridge. Empty names fall back to DefaultNames.
func New(opts Options) (*Bridge, error) {
	if opts.State == nil {
		return nil, fmt.Errorf("state is required")
	}
	opts.Names = opts.Names.WithDefaults()
	if err := opts.Names.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Callbacks == nil {
		opts.Callbacks = BaseCallbacks{}
	}
	return &Bridge{
		state:     opts.State,
		names:     opts.Names,
		logger:    opts.Logger,
		callbacks: opts.Callbacks,
	}, nil
}

// State returns the borrowed interpreter state.
func (b *Bridge) State() State {
	return b.state
}

// Names returns the host names in use.
func (b *Bridge) Names() Names {
	return b.names
}

// CallGlobal calls the named global with args and discards the results.
func (b *Bridge) CallGlobal(name string, args ...Value) error {
	event := &CallEvent{Global: name, Args: len(args), StartTime: time.Now()}
	b.callbacks.BeforeCall(event)

	err := CallGlobal(b.state, name, args...)

	event.EndTime = time.Now()
	event.Duration = event.EndTime.Sub(event.StartTime)
	event.Error = err
	b.callbacks.AfterCall(event)

	if err != nil {
		b.logger.Debug("global call failed", "global", name, "args", len(args), "error", err)
	}
	return err
}

// Print writes text to the host's message area.
func (b *Bridge) Print(text string) error {
	return b.CallGlobal(b.names.Print, String(text))
}

// Printf formats and prints a message. Failures are logged and dropped.
func (b *Bridge) Printf(format string, args ...any) {
	if err := b.Print(fmt.Sprintf(format, args...)); err != nil {
		b.logger.Warn("print failed", "error", err)
	}
}

// Schedule hands task to the host scheduler. It never runs task itself and
// reports nothing back; a failed handoff is logged.
func (b *Bridge) Schedule(task Task) {
	start := time.Now()
	ref, err := ScheduleOn(b.state, b.names.DeferTable, b.names.DeferField, task)
	b.callbacks.AfterSchedule(&ScheduleEvent{
		Table:     b.names.DeferTable,
		Field:     b.names.DeferField,
		Ref:       ref,
		StartTime: start,
		Duration:  time.Since(start),
		Error:     err,
	})
	if err != nil {
		b.logger.Warn("schedule failed",
			"target", b.names.DeferTable+"."+b.names.DeferField,
			"ref", int(ref),
			"error", err)
		return
	}
	b.logger.Debug("task scheduled", "ref", int(ref))
}
