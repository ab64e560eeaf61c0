package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueProcessesEnqueuedJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]struct{})
	done := make(chan struct{}, 3)

	q := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.ID] = struct{}{}
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Options{Workers: 2, BufferSize: 4})

	q.Start(context.Background())
	defer q.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job{ID: id, Type: "noop"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed in time")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts atomic.Int32
	done := make(chan struct{}, 1)

	q := NewQueue("test", func(context.Context, Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		done <- struct{}{}
		return nil
	}, Options{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "retry-me", Type: "flaky"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
	require.Equal(t, int32(3), attempts.Load())
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, Options{})
	require.Error(t, q.Enqueue(Job{ID: "early"}))
}

func TestQueueStopWaitsForWorkers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	q := NewQueue("test", func(context.Context, Job) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}, Options{Workers: 1})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "slow"}))
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	q.Stop()
	require.True(t, finished.Load())
}
