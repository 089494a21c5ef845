package core

// janitor.go evicts idle sessions.
//
// Sessions live only in memory, so an abandoned browser tab would otherwise
// hold its table until restart. The janitor is long-running and stops when
// its context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCleanupInterval is used when the configured interval is not positive.
const DefaultCleanupInterval = time.Minute

// StartJanitor evicts sessions idle longer than the session TTL every cleanup
// interval. It blocks until ctx is cancelled; run it in its own goroutine.
func (s *Service) StartJanitor(ctx context.Context) {
	interval := s.cleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	slog.Info("session janitor started",
		"ttl", s.sessions.ttl,
		"interval", interval,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

// evictIdle runs one eviction pass.
func (s *Service) evictIdle() int {
	evicted := s.sessions.evictExpired()
	if len(evicted) == 0 {
		return 0
	}

	s.metrics.SetSessions(s.sessions.len())
	slog.Info("expired sessions evicted",
		"evicted", len(evicted),
		"remaining", s.sessions.len(),
	)
	return len(evicted)
}
