package core

// ingest_limiter.go bounds how many files are parsed at once.
//
// Parsing holds a whole file in memory, so a batch upload or a burst of
// requests could otherwise decode dozens of workbooks in parallel. Callers
// wait up to maxWait for a slot and then fail with ErrTooManyUploads.
// WaitForDrain lets shutdown wait for in-flight parses.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyUploads is returned when every parse slot stays occupied for the
// whole wait period. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many uploads in progress, please try again later")

const (
	// DefaultMaxConcurrentParses is used when the configured limit is not positive.
	DefaultMaxConcurrentParses = 4

	// DefaultMaxWaitTime is used when the configured wait is not positive.
	DefaultMaxWaitTime = 30 * time.Second

	drainPollInterval = 50 * time.Millisecond
)

// IngestLimiter is a counting semaphore over file parses.
type IngestLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewIngestLimiter allows at most maxConcurrent parses at a time.
func NewIngestLimiter(maxConcurrent int, maxWait time.Duration) *IngestLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &IngestLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the limiter's max wait.
// Returns ctx.Err() if ctx ends first. Every nil return must be paired with Release.
func (l *IngestLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// Release returns a slot taken by Acquire.
func (l *IngestLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.slots
}

// Do runs fn while holding a slot.
func (l *IngestLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// ActiveCount returns the number of parses in flight.
func (l *IngestLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no parse is in flight or ctx ends.
func (l *IngestLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// IngestLimiterStatus is a point-in-time view of the limiter.
type IngestLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for /healthz.
func (l *IngestLimiter) Status() IngestLimiterStatus {
	active := l.ActiveCount()
	return IngestLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
