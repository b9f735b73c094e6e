package core

// scheduler.go evicts idle sessions so abandoned reports do not pile up in memory.
//
// The sweeper is long-running and context-aware for graceful shutdown. A session
// with a run in flight is never evicted, whatever its age.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig controls the session sweeper.
type SweepConfig struct {
	TTL      time.Duration // idle time before a session is dropped (default: 1h)
	Interval time.Duration // how often to sweep (default: 5m)
}

func (c *SweepConfig) defaults() {
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
}

// StartSessionSweeper evicts idle sessions every Interval until ctx is cancelled.
func (s *Service) StartSessionSweeper(ctx context.Context, cfg SweepConfig) {
	cfg.defaults()
	slog.Info("session sweeper started", "ttl", cfg.TTL, "interval", cfg.Interval)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(cfg.TTL); n > 0 {
				slog.Info("evicted idle sessions", "count", n, "remaining", s.Sessions())
			}
		}
	}
}

// Sweep drops sessions idle for longer than ttl and returns how many were dropped.
func (s *Service) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.busy || sess.touched.After(cutoff) {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}
