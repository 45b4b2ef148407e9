package ai

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// rateLimiter is a minute-window token bucket. A nil limiter never blocks.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	tokens   int
	lastTick time.Time
}

func newRateLimiter(rpm int) *rateLimiter {
	if rpm <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:    rpm,
		tokens:   rpm,
		lastTick: time.Now(),
	}
}

func (l *rateLimiter) wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastTick)
	if elapsed >= time.Minute {
		l.tokens = l.limit
		l.lastTick = now
	}

	if l.tokens > 0 {
		l.tokens--
		return nil
	}

	wait := time.Minute - elapsed
	l.mu.Unlock()
	slog.Info("rate limit reached, waiting", "duration", wait)
	select {
	case <-ctx.Done():
		l.mu.Lock()
		return ctx.Err()
	case <-time.After(wait):
	}
	l.mu.Lock()
	l.tokens = l.limit - 1
	l.lastTick = time.Now()
	return nil
}
