package risorstate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/risorstate"
	"github.com/risor-io/risor/object"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) *risorstate.Runtime {
	t.Helper()
	r, err := risorstate.NewRuntime(risorstate.RuntimeOptions{})
	require.NoError(t, err)
	return r
}

func TestPrint(t *testing.T) {
	r := newRuntime(t)
	s := r.State()

	require.NoError(t, hostbridge.Print(s, "Hello Mars!"))
	require.Equal(t, []string{"Hello Mars!"}, r.Messages().Messages())
	require.Equal(t, 0, s.GetTop())

	err := hostbridge.Print(s, "Hello\x00Mars!")
	require.ErrorIs(t, err, hostbridge.ErrInvalidArgument)
	require.Len(t, r.Messages().Messages(), 1)
}

func TestCallGlobalWithArguments(t *testing.T) {
	r := newRuntime(t)
	var got []object.Object
	r.RisorState().SetGlobal("capture", object.NewBuiltin("capture", func(ctx context.Context, args ...object.Object) object.Object {
		got = args
		return object.NewString("dropped")
	}))

	err := hostbridge.CallGlobal(r.State(), "capture", hostbridge.String("x"), hostbridge.Integer(9))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "x", risorstate.Text(got[0]))
	require.Equal(t, "9", risorstate.Text(got[1]))
	require.Equal(t, 0, r.State().GetTop())
}

func TestCallGlobalError(t *testing.T) {
	r := newRuntime(t)
	r.RisorState().SetGlobal("fail", object.NewBuiltin("fail", func(ctx context.Context, args ...object.Object) object.Object {
		return object.NewError(errors.New("refused"))
	}))
	s := r.State()
	s.PushInteger(1)

	err := hostbridge.CallGlobal(s, "fail")
	require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
	require.Contains(t, err.Error(), "refused")
	require.Equal(t, 1, s.GetTop())

	err = hostbridge.CallGlobal(s, "missing")
	require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
	require.Equal(t, 1, s.GetTop())
}

func TestSchedule(t *testing.T) {
	r := newRuntime(t)
	s := r.State()
	calls := 0

	ref, err := hostbridge.ScheduleOn(s, "vim", "schedule", func() error {
		calls++
		return hostbridge.Print(s, "later")
	})
	require.NoError(t, err)
	require.Equal(t, 0, calls)
	require.False(t, r.RisorState().Registered(ref))
	require.Equal(t, 0, r.RisorState().LiveRefs())
	require.Equal(t, 0, s.GetTop())

	require.Equal(t, 1, r.Loop().RunPending())
	require.Equal(t, 1, calls)
	require.Equal(t, []string{"later"}, r.Messages().Messages())
}

func TestScheduleWithoutHostScheduler(t *testing.T) {
	r := newRuntime(t)
	r.RisorState().SetGlobal("vim", object.Nil)

	_, err := hostbridge.ScheduleOn(r.State(), "vim", "schedule", func() error { return nil })
	require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
	require.Equal(t, 0, r.RisorState().LiveRefs())
	require.Equal(t, 0, r.State().GetTop())
	require.Equal(t, 0, r.Loop().Pending())
}

func TestScheduledTaskError(t *testing.T) {
	r := newRuntime(t)

	hostbridge.Schedule(r.State(), func() error { return errors.New("task failed") })
	r.Loop().RunPending()

	ran, failed := r.Loop().Stats()
	require.Equal(t, 1, ran)
	require.Equal(t, 1, failed)
}

func TestScheduleFromScript(t *testing.T) {
	r := newRuntime(t)

	err := r.Exec(context.Background(), `
vim.schedule(func() { print("second") })
print("first", 1)
`)
	require.NoError(t, err)
	require.Equal(t, []string{"first\t1"}, r.Messages().Messages())

	require.Equal(t, 1, r.Loop().RunPending())
	require.Equal(t, []string{"first\t1", "second"}, r.Messages().Messages())
}

func TestScheduleFromScriptRejectsNonFunction(t *testing.T) {
	r := newRuntime(t)
	err := r.Exec(context.Background(), `vim.schedule(42)`)
	require.Error(t, err)
	require.Equal(t, 0, r.Loop().Pending())
}

func TestText(t *testing.T) {
	require.Equal(t, "abc", risorstate.Text(object.NewString("abc")))
	require.Equal(t, "42", risorstate.Text(object.NewInt(42)))
	require.Equal(t, "true", risorstate.Text(object.True))
	require.Equal(t, "nil", risorstate.Text(object.Nil))
	require.Equal(t, "nil", risorstate.Text(nil))
	require.Equal(t, "[1, a]", risorstate.Text(object.NewList([]object.Object{
		object.NewInt(1), object.NewString("a"),
	})))
}

func TestPartialNames(t *testing.T) {
	names := hostbridge.Names{Print: "echo"}
	r, err := risorstate.NewRuntime(risorstate.RuntimeOptions{Names: names})
	require.NoError(t, err)
	defer r.Close()

	b, err := hostbridge.New(hostbridge.Options{State: r.State(), Names: names})
	require.NoError(t, err)

	ran := false
	b.Schedule(func() error {
		ran = true
		return b.Print("scheduled")
	})
	require.Equal(t, 1, r.Loop().RunPending())
	require.True(t, ran)
	require.Equal(t, []string{"scheduled"}, r.Messages().Messages())
}
