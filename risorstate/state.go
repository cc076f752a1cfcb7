package risorstate

import (
	"context"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/internal/emustack"
	"github.com/risor-io/risor/object"
)

// State implements hostbridge.State over a set of Risor globals.
type State struct {
	*emustack.Machine[object.Object]
	engine *engine
}

var _ hostbridge.State = (*State)(nil)

// New creates a State whose global namespace is globals. The map is used
// directly, so later changes to it are visible to the state.
func New(ctx context.Context, globals map[string]object.Object) *State {
	e := &engine{ctx: ctx, globals: globals}
	return &State{
		Machine: emustack.New[object.Object](e),
		engine:  e,
	}
}

// SetGlobal defines or replaces a global.
func (s *State) SetGlobal(name string, value object.Object) {
	s.engine.globals[name] = value
}

// Global returns a global, or nil when it is not defined.
func (s *State) Global(name string) object.Object {
	return s.engine.Global(name)
}
