package host

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopRunsJobsInOrder(t *testing.T) {
	loop := NewLoop(LoopOptions{})
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		id, err := loop.Enqueue("job", func() error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(id, "job_"))
	}
	require.Equal(t, 3, loop.Pending())
	require.Empty(t, order, "enqueue must not run jobs")

	require.Equal(t, 3, loop.RunPending())
	require.Equal(t, []int{1, 2, 3}, order)
	require.Equal(t, 0, loop.Pending())
}

func TestLoopDefersJobsQueuedWhileDraining(t *testing.T) {
	loop := NewLoop(LoopOptions{})
	var order []string
	_, err := loop.Enqueue("outer", func() error {
		order = append(order, "outer")
		_, err := loop.Enqueue("inner", func() error {
			order = append(order, "inner")
			return nil
		})
		return err
	})
	require.NoError(t, err)

	require.Equal(t, 1, loop.RunPending())
	require.Equal(t, []string{"outer"}, order)
	require.Equal(t, 1, loop.RunPending())
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoopFailuresDoNotStopDrain(t *testing.T) {
	loop := NewLoop(LoopOptions{})
	ran := 0
	_, _ = loop.Enqueue("fails", func() error { return errors.New("boom") })
	_, _ = loop.Enqueue("panics", func() error { panic("bad job") })
	_, _ = loop.Enqueue("ok", func() error {
		ran++
		return nil
	})

	require.Equal(t, 3, loop.RunPending())
	require.Equal(t, 1, ran)
	total, failed := loop.Stats()
	require.Equal(t, 3, total)
	require.Equal(t, 2, failed)
}

func TestLoopMaxPending(t *testing.T) {
	loop := NewLoop(LoopOptions{MaxPending: 2})
	noop := func() error { return nil }

	_, err := loop.Enqueue("a", noop)
	require.NoError(t, err)
	_, err = loop.Enqueue("b", noop)
	require.NoError(t, err)
	_, err = loop.Enqueue("c", noop)
	require.ErrorIs(t, err, ErrQueueFull)

	loop.RunPending()
	_, err = loop.Enqueue("c", noop)
	require.NoError(t, err)
}

func TestLoopRejectsNilJob(t *testing.T) {
	loop := NewLoop(LoopOptions{})
	_, err := loop.Enqueue("nil", nil)
	require.Error(t, err)
	require.Equal(t, 0, loop.Pending())
}

func TestLoopRun(t *testing.T) {
	loop := NewLoop(LoopOptions{})
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = loop.Run(ctx)
	}()

	done := make(chan struct{})
	_, err := loop.Enqueue("signal", func() error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job posted from another goroutine did not run")
	}

	cancel()
	wg.Wait()
	require.ErrorIs(t, runErr, context.Canceled)
}
