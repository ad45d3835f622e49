package once

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFirstSetWins(t *testing.T) {
	ev := NewEvent[string]()
	require.False(t, ev.IsSet())

	_, set := ev.Payload()
	require.False(t, set)

	require.True(t, ev.Set("first"))
	require.False(t, ev.Set("second"))
	require.True(t, ev.IsSet())

	v, set := ev.Payload()
	require.True(t, set)
	require.Equal(t, "first", v)
}

// Many concurrent setters must always resolve to exactly one winner, and
// the stored payload must be the winner's.
func TestConcurrentSetsSingleWinner(t *testing.T) {
	const goroutines = 8
	for iter := 0; iter < 200; iter++ {
		ev := NewEvent[int]()
		var wins atomic.Int32
		var winner atomic.Int32

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if ev.Set(i) {
					wins.Add(1)
					winner.Store(int32(i))
				}
			}(i)
		}
		wg.Wait()

		require.Equal(t, int32(1), wins.Load())
		v, set := ev.Payload()
		require.True(t, set)
		require.Equal(t, int(winner.Load()), v)
	}
}

func TestWaitBlocksUntilSet(t *testing.T) {
	ev := NewEvent[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		ev.Set(42)
	}()
	v, err := ev.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestWaitCancelled(t *testing.T) {
	ev := NewEvent[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ev.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTryWait(t *testing.T) {
	ev := NewEvent[int]()
	_, ok := ev.TryWait(20 * time.Millisecond)
	require.False(t, ok)

	ev.Set(7)
	v, ok := ev.TryWait(20 * time.Millisecond)
	require.True(t, ok)
	require.Equal(t, 7, v)
}
