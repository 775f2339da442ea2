package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Sequential(t *testing.T) {
	var order []int
	results, err := Run(context.Background(), 1, 4, func(_ context.Context, i int) (int, error) {
		order = append(order, i)
		return i * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30}, results)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestRun_SequentialStopsAtFirstError(t *testing.T) {
	var calls int
	_, err := Run(context.Background(), 1, 5, func(_ context.Context, i int) (string, error) {
		calls++
		if i == 2 {
			return "", errors.New("entry 2 failed")
		}
		return "ok", nil
	})
	require.EqualError(t, err, "entry 2 failed")
	assert.Equal(t, 3, calls)
}

func TestRun_ParallelKeepsIndexOrder(t *testing.T) {
	var running, peak int32
	results, err := Run(context.Background(), 3, 9, func(_ context.Context, i int) (int, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return i, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, results)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRun_ParallelReturnsLowestFailingIndex(t *testing.T) {
	_, err := Run(context.Background(), 4, 4, func(ctx context.Context, i int) (int, error) {
		switch i {
		case 1:
			time.Sleep(20 * time.Millisecond)
			return 0, errors.New("entry 1 failed")
		case 3:
			return 0, errors.New("entry 3 failed")
		}
		return i, nil
	})
	require.EqualError(t, err, "entry 1 failed")
}

func TestRun_ParallelIgnoresTasksCancelledByFailure(t *testing.T) {
	_, err := Run(context.Background(), 2, 2, func(ctx context.Context, i int) (int, error) {
		if i == 1 {
			time.Sleep(10 * time.Millisecond)
			return 0, errors.New("entry 1 fetch failed")
		}
		// Entry 0 is still in flight when entry 1 fails.
		<-ctx.Done()
		return 0, fmt.Errorf("entry 0: %w", ctx.Err())
	})
	require.EqualError(t, err, "entry 1 fetch failed")
	assert.NotErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	results, err := Run(context.Background(), 4, 0, func(context.Context, int) (int, error) {
		t.Fatal("task must not run")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRun_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, 2, 3, func(ctx context.Context, i int) (int, error) {
		return i, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
