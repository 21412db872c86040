// Package pool implements the generic worker pool the circuit evaluator
// distributes per-element expectation jobs over. Jobs produce a float64 and
// an error; results land in a ResultSpace that callers Await on.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Pool is a hybrid worker pool/result store.
type Pool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *ResultSpace
	metrics    *Metrics
	config     *Config
	log        zerolog.Logger
	workerMu   sync.Mutex
	workerList []*Worker
}

// New creates a pool with the given number of workers. A nil config uses
// the defaults from NewConfig.
func New(ctx context.Context, workers int, config *Config) *Pool {
	if workers < 1 {
		workers = 1
	}
	if config == nil {
		config = NewConfig()
	}

	ctx, cancel := context.WithCancel(ctx)
	logger := log.With().Str("component", "pool").Logger()
	p := &Pool{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan Job, workers*10),
		workers: make(chan chan Job, workers),
		space:   NewResultSpace(logger),
		metrics: NewMetrics(),
		config:  config,
		log:     logger,
	}

	for i := 0; i < workers; i++ {
		p.startWorker()
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.manage()
	}()

	return p
}

func (p *Pool) manage() {
	for {
		select {
		case <-p.ctx.Done():
			p.failPending()
			return
		case job := <-p.jobs:
			select {
			case <-p.ctx.Done():
				p.failJob(job)
				p.failPending()
				return
			case workerChan := <-p.workers:
				select {
				case workerChan <- job:
				case <-p.ctx.Done():
					p.failJob(job)
					p.failPending()
					return
				}
			case <-time.After(p.schedulingTimeout()):
				p.log.Warn().Str("job", job.ID).Msg("no available workers for job")
				p.space.Store(job.ID, 0, fmt.Errorf("no available workers"), job.TTL)
			}
		}
	}
}

// failJob stores a cancellation result so the job's waiters are released.
func (p *Pool) failJob(job Job) {
	p.space.Store(job.ID, 0, fmt.Errorf("job %s dropped: %w", job.ID, p.ctx.Err()), job.TTL)
}

// failPending drains the queue on shutdown. A queued job never reaches a
// worker once manage returns, so without a stored result its waiters would
// block forever.
func (p *Pool) failPending() {
	for {
		select {
		case job := <-p.jobs:
			p.failJob(job)
		default:
			return
		}
	}
}

// Schedule queues fn for execution and returns a channel that will receive
// the result. The channel is buffered and closed after delivery.
func (p *Pool) Schedule(id string, fn func() (float64, error), opts ...JobOption) chan Result {
	ctx, cancel := context.WithTimeout(p.ctx, p.schedulingTimeout())
	defer cancel()

	job := Job{
		ID:        id,
		Fn:        fn,
		StartTime: time.Now(),
	}
	for _, opt := range opts {
		opt(&job)
	}

	select {
	case p.jobs <- job:
		return p.space.Await(id)
	case <-ctx.Done():
		ch := make(chan Result, 1)
		ch <- Result{
			Error:     fmt.Errorf("job scheduling timeout: %w", ctx.Err()),
			CreatedAt: time.Now(),
		}
		close(ch)

		p.metrics.mu.Lock()
		p.metrics.SchedulingFailures++
		p.metrics.mu.Unlock()

		return ch
	}
}

// Await returns a channel for a previously scheduled job's result.
func (p *Pool) Await(id string) chan Result {
	return p.space.Await(id)
}

// Metrics returns a snapshot of the pool's counters.
func (p *Pool) Metrics() Metrics {
	m := p.metrics.Snapshot()
	m.JobQueueSize = len(p.jobs)
	return m
}

func (p *Pool) startWorker() {
	worker := &Worker{
		pool: p,
		jobs: make(chan Job),
	}
	p.workerMu.Lock()
	p.workerList = append(p.workerList, worker)
	p.workerMu.Unlock()

	p.metrics.mu.Lock()
	p.metrics.WorkerCount++
	p.metrics.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		worker.run(p.ctx)
	}()
}

func (p *Pool) schedulingTimeout() time.Duration {
	if p.config != nil && p.config.SchedulingTimeout > 0 {
		return p.config.SchedulingTimeout
	}
	return 5 * time.Second
}

func (p *Pool) jobTimeout() time.Duration {
	if p.config != nil && p.config.JobTimeout > 0 {
		return p.config.JobTimeout
	}
	return 30 * time.Second
}

// Close cancels all work and waits for the workers to exit.
func (p *Pool) Close() {
	if p == nil {
		return
	}

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.workerMu.Lock()
	for _, worker := range p.workerList {
		close(worker.jobs)
	}
	p.workerList = nil
	p.workerMu.Unlock()

	p.space.Close()
	close(p.jobs)
	close(p.workers)
}
