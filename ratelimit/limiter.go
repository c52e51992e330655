// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
)

// A Limiter counts admissions against a budget.
//
// Implementations of Limiter must be safe for concurrent use by multiple
// goroutines.
type Limiter interface {
	// Available reports whether at least one token is available now,
	// without consuming it.
	Available(ctx context.Context) (bool, error)
	// Take consumes one token if one is available, reporting whether
	// it did.
	Take(ctx context.Context) (bool, error)
}

// An Option configures a limiter.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock a limiter reads the time from. It is mainly
// useful in tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func validate(capacity int, window time.Duration) error {
	if capacity <= 0 {
		return fmt.Errorf("layerx/ratelimit: capacity must be positive, got %d", capacity)
	}
	if window <= 0 {
		return fmt.Errorf("layerx/ratelimit: window must be positive, got %s", window)
	}
	return nil
}

// A FixedWindow is an in-process fixed-window counter.
//
// A window starts at the first evaluation following the expiry of the
// previous window (or at the very first evaluation), and resets the
// number of available tokens to the capacity. Every Take within the
// window consumes one token until none are left.
type FixedWindow struct {
	clock    clock.Clock
	capacity int
	window   time.Duration

	mu     sync.Mutex
	tokens int
	start  time.Time
}

// NewFixedWindow returns a limiter admitting up to capacity takes in
// every window.
func NewFixedWindow(capacity int, window time.Duration, opts ...Option) (*FixedWindow, error) {
	if err := validate(capacity, window); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &FixedWindow{
		clock:    o.clock,
		capacity: capacity,
		window:   window,
	}, nil
}

// Available reports whether a token is available in the current window.
// It never returns an error.
func (w *FixedWindow) Available(_ context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	return w.tokens > 0, nil
}

// Take consumes a token from the current window. It never returns an
// error.
func (w *FixedWindow) Take(_ context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	if w.tokens <= 0 {
		return false, nil
	}
	w.tokens--
	return true, nil
}

// Tokens returns the number of tokens left in the current window.
func (w *FixedWindow) Tokens() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	return w.tokens
}

// reset starts a new window if the current one has expired. The caller
// must hold w.mu.
func (w *FixedWindow) reset() {
	now := w.clock.Now()
	if w.start.IsZero() || now.Sub(w.start) >= w.window {
		w.tokens = w.capacity
		w.start = now
	}
}
