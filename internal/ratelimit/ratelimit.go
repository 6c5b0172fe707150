// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package ratelimit bounds the number of attempts per identifier within a fixed window.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = time.Minute * 15
)

// Options configures a Limiter. Zero values select the defaults.
type Options struct {
	MaxAttempts int
	Window      time.Duration
	Clock       func() time.Time
}

type record struct {
	count   int
	resetAt time.Time
}

// Limiter counts attempts per identifier. The first attempt of an identifier opens a window;
// once it ended the identifier starts over. Records are kept in a ttlcache so memory of
// identifiers that never return is reclaimed, but whether a window ended is always decided
// against the limiter's clock.
type Limiter struct {
	mu          sync.Mutex
	records     *ttlcache.Cache
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New returns a Limiter. Close must be called to stop its expiration routine.
func New(opts Options) (*Limiter, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	records := ttlcache.NewCache()
	records.SkipTTLExtensionOnHit(true)
	if err := records.SetTTL(opts.Window); err != nil {
		return nil, fmt.Errorf("failed to set rate limit window on cache: %w", err)
	}

	return &Limiter{
		records:     records,
		maxAttempts: opts.MaxAttempts,
		window:      opts.Window,
		now:         opts.Clock,
	}, nil
}

// MaxAttempts returns the number of attempts allowed per window.
func (l *Limiter) MaxAttempts() int {
	return l.maxAttempts
}

// Window returns the length of a window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// IsAllowed reports whether another attempt for id is permitted and, if so, counts it.
// A denied attempt leaves the record unchanged.
func (l *Limiter) IsAllowed(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.active(id, now)
	if !ok {
		l.store(id, record{count: 1, resetAt: now.Add(l.window)}, l.window)
		return true
	}
	if rec.count >= l.maxAttempts {
		return false
	}
	rec.count++
	l.store(id, rec, rec.resetAt.Sub(now))
	return true
}

// RemainingAttempts returns the attempts left for id in its current window.
func (l *Limiter) RemainingAttempts(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active(id, l.now())
	if !ok {
		return l.maxAttempts
	}
	return max(l.maxAttempts-rec.count, 0)
}

// ResetAt returns the end of the current window of id. It returns false if id has no
// active window.
func (l *Limiter) ResetAt(id string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.active(id, l.now())
	if !ok {
		return time.Time{}, false
	}
	return rec.resetAt, true
}

// Reset forgets id as if it was never seen.
func (l *Limiter) Reset(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.records.Remove(id)
}

// Close stops the expiration routine of the record cache.
func (l *Limiter) Close() error {
	if err := l.records.Close(); err != nil && !errors.Is(err, ttlcache.ErrClosed) {
		return fmt.Errorf("failed to close rate limit cache: %w", err)
	}
	return nil
}

// active returns the record of id if its window has not ended yet.
func (l *Limiter) active(id string, now time.Time) (record, bool) {
	value, err := l.records.Get(id)
	if err != nil {
		return record{}, false
	}
	rec, ok := value.(record)
	if !ok || !now.Before(rec.resetAt) {
		return record{}, false
	}
	return rec, true
}

func (l *Limiter) store(id string, rec record, ttl time.Duration) {
	if ttl <= 0 {
		ttl = l.window
	}
	// The cache only fails once closed, a closed limiter simply forgets
	_ = l.records.SetWithTTL(id, rec, ttl)
}
