package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bitecast/bitecast-go/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init()
	goleak.VerifyTestMain(m)
}

func TestJobRunsOnStartAndTicks(t *testing.T) {
	var runs atomic.Int32
	s := New(nil)
	s.AddJob("counter", 20*time.Millisecond, true, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(3), "startup run plus ticks")
}

func TestSlowJobNeverOverlaps(t *testing.T) {
	var active, maxActive, runs atomic.Int32
	s := New(nil)
	s.AddJob("slow", 10*time.Millisecond, false, func(ctx context.Context) error {
		now := active.Add(1)
		if now > maxActive.Load() {
			maxActive.Store(now)
		}
		time.Sleep(60 * time.Millisecond)
		active.Add(-1)
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), maxActive.Load(), "in-flight guard must drop overlapping ticks")
	assert.Less(t, runs.Load(), int32(5), "most ticks should have been skipped")
}

func TestStopWaitsForInflightRun(t *testing.T) {
	var finished atomic.Bool
	s := New(nil)
	s.AddJob("inflight", time.Hour, true, func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	s.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	assert.True(t, finished.Load(), "Stop returned before the running job finished")
}

func TestStartTwiceIsNoop(t *testing.T) {
	var runs atomic.Int32
	s := New(nil)
	s.AddJob("once", time.Hour, true, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), runs.Load())
}

func TestContextCancelStopsLoops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(nil)
	s.AddJob("ctx", 10*time.Millisecond, false, func(ctx context.Context) error {
		return nil
	})

	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "job loops did not exit on context cancel")
	}
}
