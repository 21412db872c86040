package pool

import (
	"sync"
	"time"
)

// Metrics tracks pool activity. All fields are guarded by mu; use Snapshot
// for a consistent read.
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	JobCount           int64
	FailedJobs         int64
	SchedulingFailures int64
	TotalJobTime       time.Duration
	AverageJobLatency  time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++
	if !success {
		m.FailedJobs++
	}
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)
}

// Snapshot returns a copy of the current counters without the lock.
func (m *Metrics) Snapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Metrics{
		WorkerCount:        m.WorkerCount,
		JobQueueSize:       m.JobQueueSize,
		JobCount:           m.JobCount,
		FailedJobs:         m.FailedJobs,
		SchedulingFailures: m.SchedulingFailures,
		TotalJobTime:       m.TotalJobTime,
		AverageJobLatency:  m.AverageJobLatency,
	}
}
