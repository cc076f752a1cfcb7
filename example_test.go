package hostbridge_test

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/host"
	"github.com/deepnoodle-ai/hostbridge/luastate"
	"github.com/stretchr/testify/require"
)

func TestHostbridgeLibraryExample(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var out bytes.Buffer
	messages := host.NewMessageArea(host.MessageAreaOptions{Output: &out, Logger: logger})
	loop := host.NewLoop(host.LoopOptions{Logger: logger})

	rt, err := luastate.NewRuntime(luastate.RuntimeOptions{
		Loop:     loop,
		Messages: messages,
		Logger:   logger,
	})
	require.NoError(t, err)
	defer rt.Close()

	bridge, err := hostbridge.New(hostbridge.Options{
		State:  rt.State(),
		Logger: logger,
	})
	require.NoError(t, err)

	require.NoError(t, bridge.Print("Hello Mars!"))

	ran := false
	bridge.Schedule(func() error {
		ran = true
		return bridge.Print("from the loop")
	})
	require.False(t, ran, "schedule must not run the task")
	require.Equal(t, 0, rt.State().GetTop())

	require.Equal(t, 1, loop.RunPending())
	require.True(t, ran)
	require.Equal(t, "Hello Mars!\nfrom the loop\n", out.String())
	require.Equal(t, 0, rt.LuaState().LiveRefs())
}
