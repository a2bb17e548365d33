package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSchedulerRunsPeriodicJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterJob("tick", 10*time.Millisecond, 0, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestSchedulerOnceJobAndErrors(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	s.RegisterOnceJob("once", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("failed")
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop(context.Background())
	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerStopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	started := make(chan struct{})
	var cancelled atomic.Bool
	s.RegisterJob("slow", time.Hour, time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})

	s.Start(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.True(t, cancelled.Load())
}

func TestSchedulerJobTimeout(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	deadline := make(chan time.Duration, 1)
	s.RegisterJob("deadline", time.Hour, 50*time.Millisecond, func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		if ok {
			deadline <- time.Until(d)
		}
		return nil
	})

	s.Start(context.Background())
	defer s.Stop(context.Background())

	select {
	case d := <-deadline:
		assert.LessOrEqual(t, d, 50*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}
