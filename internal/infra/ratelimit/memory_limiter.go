// Package ratelimit implements sliding-window attempt limits for login and
// two-factor verification.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"storehub/internal/domain/service"
)

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = 15 * time.Minute
)

type memoryLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	maxReqs  int
	window   time.Duration
	now      func() time.Time
	cleanup  *time.Ticker
	stopOnce sync.Once
	done     chan struct{}
}

type bucket struct {
	attempts []time.Time
	lastSeen time.Time
}

// MemoryLimiter is the process-local limiter. Stop releases its janitor.
type MemoryLimiter interface {
	service.RateLimiter
	Stop()
}

// NewMemoryLimiter allows maxAttempts per key within any window-long span.
func NewMemoryLimiter(maxAttempts int, window time.Duration) MemoryLimiter {
	l := newMemoryLimiter(maxAttempts, window, time.Now)
	go l.cleanupStale()

	return l
}

func newMemoryLimiter(maxAttempts int, window time.Duration, now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		buckets: make(map[string]*bucket),
		maxReqs: maxAttempts,
		window:  window,
		now:     now,
		cleanup: time.NewTicker(cleanupInterval),
		done:    make(chan struct{}),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{}
		l.buckets[key] = b
	}

	cutoff := now.Add(-l.window)
	kept := b.attempts[:0]
	for _, t := range b.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.attempts = kept
	b.lastSeen = now

	if len(b.attempts) >= l.maxReqs {
		return false, nil
	}
	b.attempts = append(b.attempts, now)

	return true, nil
}

func (l *memoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()

	return nil
}

func (l *memoryLimiter) cleanupStale() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanup.C:
			l.mu.Lock()
			threshold := l.now().Add(-staleAfter)
			for key, b := range l.buckets {
				if b.lastSeen.Before(threshold) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *memoryLimiter) Stop() {
	l.stopOnce.Do(func() {
		l.cleanup.Stop()
		close(l.done)
	})
}
