package pool

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Result wraps a computed expectation value with metadata
type Result struct {
	Value     float64
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

// ResultSpace handles result storage and await semantics. Workers Store
// values under a job ID; callers Await them through a buffered channel that
// is closed after delivery.
type ResultSpace struct {
	mu      sync.RWMutex
	values  map[string]Result
	waiting map[string][]chan Result
	log     zerolog.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewResultSpace(log zerolog.Logger) *ResultSpace {
	rs := &ResultSpace{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
		log:     log,
		done:    make(chan struct{}),
	}

	// Expired results are dropped in the background so long-lived pools
	// do not accumulate one entry per element evaluated.
	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		rs.cleanupLoop()
	}()

	return rs
}

// Store stores a value with its metadata and notifies waiting channels.
func (rs *ResultSpace) Store(id string, value float64, err error, ttl time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r := Result{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	rs.values[id] = r
	rs.log.Debug().Str("job", id).Float64("value", value).Err(err).Msg("stored result")

	if channels, ok := rs.waiting[id]; ok {
		for _, ch := range channels {
			select {
			case ch <- r:
				close(ch)
			default:
				// Channel full or closed; the waiter already gave up.
			}
		}
		delete(rs.waiting, id)
	}
}

// Await returns a channel that will receive the result when it's available
func (rs *ResultSpace) Await(id string) chan Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan Result, 1)

	if r, ok := rs.values[id]; ok {
		ch <- r
		close(ch)
		return ch
	}

	rs.waiting[id] = append(rs.waiting[id], ch)
	return ch
}

// Exists checks if a result is present in the space.
func (rs *ResultSpace) Exists(id string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, exists := rs.values[id]
	return exists
}

func (rs *ResultSpace) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rs.done:
			return
		case <-ticker.C:
			rs.mu.Lock()
			rs.cleanupExpired()
			rs.mu.Unlock()
		}
	}
}

func (rs *ResultSpace) cleanupExpired() {
	now := time.Now()
	for id, r := range rs.values {
		if r.TTL > 0 && now.Sub(r.CreatedAt) > r.TTL {
			delete(rs.values, id)
		}
	}
}

// Close stops the cleanup goroutine and drops all waiting channels.
func (rs *ResultSpace) Close() {
	close(rs.done)
	rs.wg.Wait()

	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, channels := range rs.waiting {
		for _, ch := range channels {
			close(ch)
		}
	}
	rs.waiting = make(map[string][]chan Result)
}
