package hostbridge_test

import (
	"errors"
	"testing"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/internal/statetest"
	"github.com/stretchr/testify/require"
)

func TestCallGlobalPrint(t *testing.T) {
	host := statetest.NewHost()
	rec := statetest.Record(host)

	err := hostbridge.CallGlobal(rec, "print", hostbridge.String("Hello Mars!"))
	require.NoError(t, err)

	require.Equal(t, []string{"Hello Mars!"}, host.Messages)
	require.Equal(t, 0, host.GetTop())

	require.Equal(t, 1, rec.Count("GetGlobal"))
	require.Equal(t, 1, rec.Count("PushString"))
	require.Equal(t, 1, rec.Count("Call"))
	require.Equal(t, []string{"GetTop", "GetGlobal", "PushString", "Call"}, rec.Names())
	require.Equal(t, []any{"print"}, rec.Ops[1].Args)
	require.Equal(t, []any{"Hello Mars!"}, rec.Ops[2].Args)
	require.Equal(t, []any{1, 0}, rec.Ops[3].Args)
}

func TestCallGlobalKeepsStackBalanced(t *testing.T) {
	host := statetest.NewHost()

	// Unrelated values already on the stack must survive.
	host.PushString("caller value")
	host.PushInteger(7)

	for _, text := range []string{"", "a", "multi\nline", "unicode ✓", "tab\tseparated"} {
		require.NoError(t, hostbridge.Print(host, text))
		require.Equal(t, 2, host.GetTop(), "text %q", text)
	}
	top, ok := host.Value(-1)
	require.True(t, ok)
	require.Equal(t, int64(7), top)
}

func TestCallGlobalRejectsNulBytes(t *testing.T) {
	t.Run("text argument", func(t *testing.T) {
		host := statetest.NewHost()
		rec := statetest.Record(host)

		err := hostbridge.Print(rec, "Hello\x00Mars")
		require.Error(t, err)
		require.ErrorIs(t, err, hostbridge.ErrInvalidArgument)
		require.Empty(t, rec.Ops, "no interpreter interaction expected")
		require.Empty(t, host.Messages)
	})

	t.Run("later argument", func(t *testing.T) {
		rec := statetest.Record(statetest.NewHost())

		err := hostbridge.CallGlobal(rec, "print",
			hostbridge.String("fine"), hostbridge.Integer(3), hostbridge.String("\x00"))
		require.ErrorIs(t, err, hostbridge.ErrInvalidArgument)
		require.Empty(t, rec.Ops)
	})

	t.Run("global name", func(t *testing.T) {
		rec := statetest.Record(statetest.NewHost())

		err := hostbridge.CallGlobal(rec, "pri\x00nt")
		require.ErrorIs(t, err, hostbridge.ErrInvalidArgument)
		require.Empty(t, rec.Ops)
	})

	t.Run("nil argument", func(t *testing.T) {
		rec := statetest.Record(statetest.NewHost())

		err := hostbridge.CallGlobal(rec, "print", nil)
		require.ErrorIs(t, err, hostbridge.ErrInvalidArgument)
		require.Empty(t, rec.Ops)
	})
}

func TestCallGlobalInterpreterError(t *testing.T) {
	t.Run("global raises", func(t *testing.T) {
		host := statetest.NewHost()
		host.PrintErr = errors.New("message area locked")
		host.PushString("keep")

		err := hostbridge.Print(host, "hello")
		require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
		require.ErrorIs(t, err, host.PrintErr)
		require.Contains(t, err.Error(), "message area locked")
		require.Equal(t, 1, host.GetTop())
	})

	t.Run("missing global", func(t *testing.T) {
		host := statetest.NewHost()

		err := hostbridge.CallGlobal(host, "does_not_exist", hostbridge.String("x"))
		require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
		require.Equal(t, 0, host.GetTop())
	})

	t.Run("global is not callable", func(t *testing.T) {
		host := statetest.NewHost()
		host.Engine.Globals["answer"] = int64(42)

		err := hostbridge.CallGlobal(host, "answer")
		require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
		require.Equal(t, 0, host.GetTop())
	})
}

func TestCallGlobalArguments(t *testing.T) {
	host := statetest.NewHost()
	var got []any
	host.Engine.Globals["capture"] = statetest.Func(func(args []any) ([]any, error) {
		got = args
		return []any{"ignored", "results"}, nil
	})

	ref := host.RefTask(func() error { return nil })
	err := hostbridge.CallGlobal(host, "capture",
		hostbridge.String("s"), hostbridge.Integer(-5), ref)
	require.NoError(t, err)

	require.Len(t, got, 3)
	require.Equal(t, "s", got[0])
	require.Equal(t, int64(-5), got[1])
	require.IsType(t, statetest.Func(nil), got[2], "refs are pushed as the registered value")
	require.Equal(t, 0, host.GetTop(), "results are discarded")
}

func TestPrintIsIndependentAcrossCalls(t *testing.T) {
	host := statetest.NewHost()
	rec := statetest.Record(host)

	require.NoError(t, hostbridge.Print(rec, "same"))
	first := rec.Names()
	rec.Reset()
	require.NoError(t, hostbridge.Print(rec, "same"))

	require.Equal(t, first, rec.Names())
	require.Equal(t, []string{"same", "same"}, host.Messages)
	require.Equal(t, 0, host.GetTop())
}

func TestPrintf(t *testing.T) {
	host := statetest.NewHost()

	hostbridge.Printf(host, "Hello %s!", "Mars")
	hostbridge.Printf(host, "bad %s", "\x00") // dropped

	require.Equal(t, []string{"Hello Mars!"}, host.Messages)
}
