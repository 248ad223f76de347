package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SlidingWindow allows at most maxRequests calls in any trailing period.
type SlidingWindow struct {
	maxRequests int
	period      time.Duration

	mu       sync.Mutex
	requests []time.Time // FIFO of recorded call times, oldest first

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock replaces the clock and sleep functions. Used by tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *SlidingWindow) {
		s.now = now
		s.sleep = sleep
	}
}

// New creates a limiter allowing maxRequests calls per period.
func New(maxRequests int, period time.Duration, opts ...Option) (*SlidingWindow, error) {
	if maxRequests < 1 {
		return nil, fmt.Errorf("max requests must be >= 1, got %d", maxRequests)
	}
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %v", period)
	}

	s := &SlidingWindow{
		maxRequests: maxRequests,
		period:      period,
		requests:    make([]time.Time, 0, maxRequests),
		now:         time.Now,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Wait blocks until a call is allowed, then records it.
// Returns ctx.Err() without recording if the context ends first.
func (s *SlidingWindow) Wait(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.now()
		s.pruneLocked(now)

		if len(s.requests) < s.maxRequests {
			s.requests = append(s.requests, now)
			return nil
		}

		wait := s.requests[0].Add(s.period).Sub(now)
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Pending returns the number of calls recorded in the current window.
func (s *SlidingWindow) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())
	return len(s.requests)
}

// pruneLocked drops timestamps at or before now-period.
func (s *SlidingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.period)
	i := 0
	for i < len(s.requests) && !s.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		s.requests = s.requests[i:]
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
