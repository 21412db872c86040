package pool

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrJobTimeout indicates a job ran past the pool's job timeout.
var ErrJobTimeout = errors.New("pool: job timed out")

// Worker processes jobs
type Worker struct {
	pool *Pool
	jobs chan Job
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
			select {
			case job, ok := <-w.jobs:
				if !ok {
					return
				}
				w.handle(ctx, job)
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, job Job) {
	done := make(chan struct{})
	go func() {
		value, err := w.processJob(job)
		w.pool.space.Store(job.ID, value, err, job.TTL)
		close(done)
	}()

	// Waiters must always see a result. If Fn is still running the stores
	// below win the race for the waiting channels; a late Store from the
	// goroutine then finds no waiters and only refreshes the space entry.
	select {
	case <-done:
	case <-ctx.Done():
		w.pool.space.Store(job.ID, 0, ctx.Err(), job.TTL)
	case <-time.After(w.pool.jobTimeout()):
		w.pool.log.Warn().Str("job", job.ID).Msg("job timed out")
		w.pool.space.Store(job.ID, 0, fmt.Errorf("%w: %s", ErrJobTimeout, job.ID), job.TTL)
	}
}

func (w *Worker) processJob(job Job) (float64, error) {
	value, err := w.executeWithRetries(job)

	w.pool.metrics.recordJobExecution(job.StartTime, err == nil)

	if err != nil {
		return 0, err
	}
	return value, nil
}

func (w *Worker) executeWithRetries(job Job) (float64, error) {
	if job.RetryPolicy == nil {
		return job.Fn()
	}

	for job.Attempt = 0; job.Attempt < job.RetryPolicy.MaxAttempts; job.Attempt++ {
		if job.Attempt > 0 {
			delay := job.RetryPolicy.Strategy.NextDelay(job.Attempt)
			w.pool.log.Debug().
				Str("job", job.ID).
				Int("attempt", job.Attempt+1).
				Dur("delay", delay).
				Msg("retrying job")
			time.Sleep(delay)
		}

		value, err := job.Fn()
		if err == nil {
			return value, nil
		}

		job.LastError = err
		w.pool.log.Debug().
			Str("job", job.ID).
			Int("attempt", job.Attempt+1).
			Err(err).
			Msg("job attempt failed")

		if job.RetryPolicy.Filter != nil && !job.RetryPolicy.Filter(err) {
			break
		}
	}
	return 0, fmt.Errorf("all retries failed for job %s: %w", job.ID, job.LastError)
}
