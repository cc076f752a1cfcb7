// Package risorstate drives the Risor scripting engine through
// hostbridge.State. Risor has no stack API, so the stack and the reference
// registry are emulated on the Go side.
package risorstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/hostbridge/internal/emustack"
	"github.com/risor-io/risor/object"
)

// engine adapts Risor objects to emustack.
type engine struct {
	ctx     context.Context
	globals map[string]object.Object
}

var _ emustack.Engine[object.Object] = (*engine)(nil)

func (e *engine) Nil() object.Object { return object.Nil }

func (e *engine) IsNil(v object.Object) bool {
	if v == nil {
		return true
	}
	_, ok := v.(*object.NilType)
	return ok
}

func (e *engine) Global(name string) object.Object {
	if v, ok := e.globals[name]; ok {
		return v
	}
	return object.Nil
}

func (e *engine) Field(obj object.Object, name string) object.Object {
	if m, ok := obj.(*object.Map); ok {
		return m.Get(name)
	}
	return object.Nil
}

func (e *engine) String(s string) object.Object { return object.NewString(s) }

func (e *engine) Integer(n int64) object.Object { return object.NewInt(n) }

func (e *engine) Func(fn func() error) object.Object {
	return object.NewBuiltin("deferred_task", func(ctx context.Context, args ...object.Object) object.Object {
		if err := fn(); err != nil {
			return object.NewError(err)
		}
		return object.Nil
	})
}

func (e *engine) Call(fn object.Object, args []object.Object) ([]object.Object, error) {
	callable, ok := fn.(object.Callable)
	if !ok {
		return nil, fmt.Errorf("attempt to call a %s value", fn.Type())
	}
	result := callable.Call(e.ctx, args...)
	if err := callError(result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return []object.Object{result}, nil
}

// callError converts a Risor call result into a Go error.
func callError(result object.Object) error {
	if errObj, ok := result.(*object.Error); ok {
		if err := errObj.Value(); err != nil {
			return err
		}
		return errors.New(errObj.Inspect())
	}
	return nil
}
