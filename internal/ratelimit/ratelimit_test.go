// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testLimiter(t *testing.T, opts Options) (*Limiter, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	opts.Clock = clock.Now
	limiter, err := New(opts)
	if err != nil {
		t.Fatalf("failed to create limiter: %s", err)
	}
	t.Cleanup(func() {
		if err := limiter.Close(); err != nil {
			t.Errorf("failed to close limiter: %s", err)
		}
	})
	return limiter, clock
}

func TestNew(t *testing.T) {
	limiter, _ := testLimiter(t, Options{})
	if limiter.MaxAttempts() != DefaultMaxAttempts {
		t.Errorf("expected max attempts to be %d, got %d", DefaultMaxAttempts, limiter.MaxAttempts())
	}
	if limiter.Window() != DefaultWindow {
		t.Errorf("expected window to be %s, got %s", DefaultWindow, limiter.Window())
	}
}

func TestLimiter_IsAllowed(t *testing.T) {
	t.Run("attempts are bounded per window", func(t *testing.T) {
		limiter, clock := testLimiter(t, Options{MaxAttempts: 5, Window: 15 * time.Minute})
		for i := range 5 {
			if !limiter.IsAllowed("x") {
				t.Fatalf("expected attempt %d to be allowed", i+1)
			}
		}
		if limiter.IsAllowed("x") {
			t.Error("expected 6th attempt within the window to be denied")
		}
		if remaining := limiter.RemainingAttempts("x"); remaining != 0 {
			t.Errorf("expected no remaining attempts, got %d", remaining)
		}

		clock.Advance(15 * time.Minute)
		if !limiter.IsAllowed("x") {
			t.Error("expected attempt after the window to be allowed")
		}
		if remaining := limiter.RemainingAttempts("x"); remaining != 4 {
			t.Errorf("expected the counter to restart at 1, got %d remaining", remaining)
		}
	})
	t.Run("denied attempts do not change the window", func(t *testing.T) {
		limiter, clock := testLimiter(t, Options{MaxAttempts: 2, Window: time.Minute})
		limiter.IsAllowed("x")
		resetAt, ok := limiter.ResetAt("x")
		if !ok {
			t.Fatal("expected an active window")
		}
		clock.Advance(30 * time.Second)
		limiter.IsAllowed("x")
		limiter.IsAllowed("x")
		after, _ := limiter.ResetAt("x")
		if !after.Equal(resetAt) {
			t.Errorf("expected window end to stay at %s, got %s", resetAt, after)
		}
		clock.Advance(30*time.Second - time.Nanosecond)
		if limiter.IsAllowed("x") {
			t.Error("expected attempt just before the window end to be denied")
		}
		clock.Advance(time.Nanosecond)
		if !limiter.IsAllowed("x") {
			t.Error("expected attempt at the window end to be allowed")
		}
	})
	t.Run("identifiers are independent", func(t *testing.T) {
		limiter, _ := testLimiter(t, Options{MaxAttempts: 1, Window: time.Minute})
		if !limiter.IsAllowed("a") {
			t.Error("expected first attempt of a to be allowed")
		}
		if limiter.IsAllowed("a") {
			t.Error("expected second attempt of a to be denied")
		}
		if !limiter.IsAllowed("b") {
			t.Error("expected first attempt of b to be allowed")
		}
	})
}

func TestLimiter_RemainingAttempts(t *testing.T) {
	limiter, clock := testLimiter(t, Options{MaxAttempts: 3, Window: time.Minute})
	if remaining := limiter.RemainingAttempts("x"); remaining != 3 {
		t.Errorf("expected 3 remaining attempts for an unknown identifier, got %d", remaining)
	}
	limiter.IsAllowed("x")
	if remaining := limiter.RemainingAttempts("x"); remaining != 2 {
		t.Errorf("expected 2 remaining attempts, got %d", remaining)
	}
	if remaining := limiter.RemainingAttempts("x"); remaining != 2 {
		t.Errorf("expected RemainingAttempts to be read-only, got %d", remaining)
	}
	clock.Advance(time.Minute)
	if remaining := limiter.RemainingAttempts("x"); remaining != 3 {
		t.Errorf("expected an expired window to report all attempts, got %d", remaining)
	}
}

func TestLimiter_ResetAt(t *testing.T) {
	limiter, clock := testLimiter(t, Options{MaxAttempts: 3, Window: time.Minute})
	if _, ok := limiter.ResetAt("x"); ok {
		t.Error("expected no window for an unknown identifier")
	}
	start := clock.Now()
	limiter.IsAllowed("x")
	resetAt, ok := limiter.ResetAt("x")
	if !ok {
		t.Fatal("expected an active window")
	}
	if !resetAt.Equal(start.Add(time.Minute)) {
		t.Errorf("expected window to end at %s, got %s", start.Add(time.Minute), resetAt)
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter, _ := testLimiter(t, Options{MaxAttempts: 1, Window: time.Minute})
	limiter.IsAllowed("x")
	if limiter.IsAllowed("x") {
		t.Fatal("expected second attempt to be denied")
	}
	limiter.Reset("x")
	if remaining := limiter.RemainingAttempts("x"); remaining != 1 {
		t.Errorf("expected reset identifier to have all attempts, got %d", remaining)
	}
	if !limiter.IsAllowed("x") {
		t.Error("expected attempt after reset to be allowed")
	}
	limiter.Reset("unknown")
}

func TestLimiter_Concurrency(t *testing.T) {
	limiter, _ := testLimiter(t, Options{MaxAttempts: 10, Window: time.Minute})
	var allowed atomic.Int32
	wg := sync.WaitGroup{}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.IsAllowed("x") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := allowed.Load(); got != 10 {
		t.Errorf("expected exactly 10 allowed attempts, got %d", got)
	}
}

func TestLimiter_WallClock(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		limiter, err := New(Options{MaxAttempts: 2, Window: time.Minute})
		if err != nil {
			t.Fatalf("failed to create limiter: %s", err)
		}
		defer func() {
			if err := limiter.Close(); err != nil {
				t.Errorf("failed to close limiter: %s", err)
			}
		}()

		limiter.IsAllowed("x")
		limiter.IsAllowed("x")
		if limiter.IsAllowed("x") {
			t.Error("expected third attempt to be denied")
		}
		time.Sleep(time.Minute)
		synctest.Wait()
		if !limiter.IsAllowed("x") {
			t.Error("expected attempt after the window to be allowed")
		}
	})
}

func TestLimiter_Close(t *testing.T) {
	limiter, err := New(Options{})
	if err != nil {
		t.Fatalf("failed to create limiter: %s", err)
	}
	if err = limiter.Close(); err != nil {
		t.Errorf("failed to close limiter: %s", err)
	}
	if err = limiter.Close(); err != nil {
		t.Errorf("expected closing twice to succeed, got %s", err)
	}
}
