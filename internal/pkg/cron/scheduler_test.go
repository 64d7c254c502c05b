package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsImmediatelyAndOnTicker(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob("counter", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestScheduler_RecoversFromPanicsAndErrors(t *testing.T) {
	var panics, failures atomic.Int32
	s := NewScheduler()
	s.AddJob("panicking", 10*time.Millisecond, func(ctx context.Context) error {
		panics.Add(1)
		panic("boom")
	})
	s.AddJob("failing", 10*time.Millisecond, func(ctx context.Context) error {
		failures.Add(1)
		return errors.New("failed")
	})

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return panics.Load() >= 2 && failures.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_StopsWhenHostContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)

	s := NewScheduler()
	s.AddJob("blocking", time.Hour, func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})
	s.Start(ctx)
	<-started

	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestSafeRun(t *testing.T) {
	err := safeRun(context.Background(), Job{Name: "p", Fn: func(ctx context.Context) error { panic("bad") }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: bad")

	err = safeRun(context.Background(), Job{Name: "ok", Fn: func(ctx context.Context) error { return nil }})
	assert.NoError(t, err)
}

func TestScheduler_RunOnce(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.AddJob("a", time.Hour, func(ctx context.Context) error { runs.Add(1); return nil })
	s.AddJob("b", time.Hour, func(ctx context.Context) error { runs.Add(1); panic("x") })

	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), runs.Load())
}
