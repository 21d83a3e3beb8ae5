// Package worker runs background jobs on a bounded goroutine pool and schedules periodic queue drains.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/domain/job"
)

// ErrClosed is returned by Dispatch after Stop.
var ErrClosed = errors.New("worker pool closed")

// Runner executes one job.
type Runner interface {
	Run(ctx context.Context, j job.Job) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, j job.Job) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, j job.Job) error { return f(ctx, j) }

// Pool executes dispatched jobs on a fixed number of goroutines. Jobs are delivered at most once: a
// failed job is logged and dropped.
type Pool struct {
	runner  Runner
	jobs    chan job.Job
	workers int
	logger  *zap.Logger

	mu       sync.RWMutex
	closed   bool
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewPool creates a pool with the given concurrency and buffer size.
func NewPool(r Runner, workers, buffer int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		runner:  r,
		jobs:    make(chan job.Job, buffer),
		quit:    make(chan struct{}),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the workers. Jobs run under a context derived from ctx.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := range p.workers {
		p.wg.Add(1)
		go p.loop(ctx, i)
	}
	p.logger.Info("Worker pool started", zap.Int("workers", p.workers))
}

func (p *Pool) loop(ctx context.Context, id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		p.runOne(ctx, id, j)
	}
}

func (p *Pool) runOne(ctx context.Context, id int, j job.Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Job panicked", zap.Int("worker", id), zap.String("job", string(j.Kind())),
				zap.Any("panic", r))
		}
	}()
	if err := p.runner.Run(ctx, j); err != nil {
		p.logger.Warn("Job dropped after failure", zap.Int("worker", id), zap.String("job", string(j.Kind())))
	}
}

// Dispatch queues j, blocking while the buffer is full until ctx is done.
func (p *Pool) Dispatch(ctx context.Context, j job.Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.jobs <- j:
		return nil
	case <-p.quit:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("dispatch %s: %w", j.Kind(), ctx.Err())
	}
}

// Stop stops accepting jobs, lets the workers finish the buffered ones and waits for them until ctx is
// done; then running jobs are canceled.
func (p *Pool) Stop(ctx context.Context) error {
	// unblock dispatchers waiting on a full buffer before taking the write lock
	p.quitOnce.Do(func() { close(p.quit) })

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if p.cancel != nil {
			p.cancel()
		}
		return nil
	case <-ctx.Done():
		if p.cancel != nil {
			p.cancel()
		}
		<-done
		return fmt.Errorf("worker pool stop: %w", ctx.Err())
	}
}
