// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ratelimit

import (
	"context"
	"time"

	"github.com/andres-erbsen/clock"
	"golang.org/x/time/rate"
)

// A TokenBucket is an in-process token bucket holding up to capacity
// tokens and refilled at a rate of capacity tokens per window.
//
// Unlike FixedWindow, a TokenBucket does not refill all at once when a
// window expires, so it never admits two full windows' worth of calls
// back to back.
type TokenBucket struct {
	clock   clock.Clock
	limiter *rate.Limiter
}

// NewTokenBucket returns a limiter admitting bursts of up to capacity
// takes, and capacity takes per window on average.
func NewTokenBucket(capacity int, window time.Duration, opts ...Option) (*TokenBucket, error) {
	if err := validate(capacity, window); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	every := window / time.Duration(capacity)
	if every <= 0 {
		every = time.Nanosecond
	}
	lim := rate.NewLimiter(rate.Every(every), capacity)
	// Start full, as of the clock's notion of now.
	lim.SetLimitAt(o.clock.Now(), rate.Every(every))
	return &TokenBucket{
		clock:   o.clock,
		limiter: lim,
	}, nil
}

// Available reports whether the bucket holds at least one token. It
// never returns an error.
func (b *TokenBucket) Available(_ context.Context) (bool, error) {
	return b.limiter.TokensAt(b.clock.Now()) >= 1, nil
}

// Take removes a token from the bucket if it holds one. It never returns
// an error.
func (b *TokenBucket) Take(_ context.Context) (bool, error) {
	return b.limiter.AllowN(b.clock.Now(), 1), nil
}
