package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain/job"
)

const defaultEnqueueTimeout = 10 * time.Second

// Dispatcher accepts jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context, j job.Job) error
}

// Scheduler enqueues a ProcessQueue job per queued model on a cron schedule. A tick whose previous
// enqueue of the same model is still waiting is skipped, and an enqueue gives up after the enqueue
// timeout.
type Scheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithEnqueueTimeout bounds how long one tick waits for the dispatcher.
func WithEnqueueTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewScheduler creates a scheduler. Schedules accept standard five-field specs and descriptors such as
// "@every 1m".
func NewScheduler(d Dispatcher, logger *zap.Logger, opts ...SchedulerOption) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		dispatcher: d,
		timeout:    defaultEnqueueTimeout,
		logger:     logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ScheduleDrain registers a periodic drain of the model's reindex queue.
func (s *Scheduler) ScheduleDrain(spec, model string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.enqueueDrain(context.Background(), model)
	})
	if err != nil {
		return fmt.Errorf("schedule drain of %s: %w", model, err)
	}
	s.logger.Info("Queue drain scheduled", zap.String("model", model), zap.String("schedule", spec))
	return nil
}

func (s *Scheduler) enqueueDrain(ctx context.Context, model string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.dispatcher.Dispatch(ctx, job.ProcessQueue{Class: model, Inline: true}); err != nil {
		s.logger.Warn("Queue drain tick skipped", zap.String("model", model), zap.Error(err))
	}
}

// Entries returns the number of scheduled drains.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// Start runs the schedule in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule and waits for running callbacks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger routes cron's own messages into zap.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, kv ...any) { l.s.Debugw(msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}
