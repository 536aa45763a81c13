// Package scheduler runs the background jobs: environment ingest with
// forecast rebuild, snapshot capture, and score recalculation. Jobs are
// named closures on interval tickers; a tick that lands while the previous
// run is still in flight is skipped and counted, never queued.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bitecast/bitecast-go/internal/logging"
	"github.com/bitecast/bitecast-go/internal/observability/metrics"
)

// startupStagger spaces job start times so the first runs do not all hit
// the datastore and upstream APIs at once.
const startupStagger = 2 * time.Second

// JobFunc is one schedulable unit of work.
type JobFunc func(ctx context.Context) error

type job struct {
	name       string
	interval   time.Duration
	runOnStart bool
	fn         JobFunc
	inFlight   atomic.Bool
}

// Scheduler owns the job goroutines and their shared stop channel.
type Scheduler struct {
	metrics  *metrics.SchedulerMetrics // nil disables recording
	logger   *slog.Logger
	jobs     []*job
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	started  atomic.Bool
}

// New creates an empty scheduler. Metrics may be nil.
func New(m *metrics.SchedulerMetrics) *Scheduler {
	return &Scheduler{
		metrics: m,
		logger:  logging.ForService("scheduler"),
		stop:    make(chan struct{}),
	}
}

// AddJob registers a job. Must be called before Start.
func (s *Scheduler) AddJob(name string, interval time.Duration, runOnStart bool, fn JobFunc) {
	s.jobs = append(s.jobs, &job{
		name:       name,
		interval:   interval,
		runOnStart: runOnStart,
		fn:         fn,
	})
}

// Start launches one goroutine per registered job, staggered so startup
// work does not pile up. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	for i, j := range s.jobs {
		stagger := time.Duration(i) * startupStagger
		s.wg.Go(func() {
			s.runLoop(ctx, j, stagger)
		})
		s.logger.Info("scheduled job",
			"job", j.name, "interval", j.interval, "run_on_start", j.runOnStart)
	}
}

// Stop signals all job loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	if !s.started.Load() {
		return
	}
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, j *job, stagger time.Duration) {
	if stagger > 0 {
		select {
		case <-time.After(stagger):
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}

	if j.runOnStart {
		s.runJob(ctx, j)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// Run off the loop goroutine so a slow run cannot block
			// shutdown; the in-flight guard drops overlapping ticks.
			s.wg.Go(func() {
				s.runJob(ctx, j)
			})
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	if !j.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in flight, skipping tick", "job", j.name)
		if s.metrics != nil {
			s.metrics.RecordJobOverrunSkipped(j.name)
		}
		return
	}
	defer j.inFlight.Store(false)

	start := time.Now()
	err := j.fn(ctx)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		s.logger.Error("job failed", "job", j.name, "duration", elapsed, "error", err)
	} else {
		s.logger.Debug("job finished", "job", j.name, "duration", elapsed)
	}
	if s.metrics != nil {
		s.metrics.RecordJobRun(j.name, status, elapsed.Seconds())
	}
}
