// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"github.com/andres-erbsen/clock"
	"github.com/gogama/layerx/ratelimit"
	"github.com/gogama/layerx/timeout"
	"go.uber.org/zap"
)

// An Option customizes a Pipeline beyond its Config.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	handlers *HandlerGroup
	limiter  ratelimit.Limiter
	clock    clock.Clock
	policy   timeout.Policy
	discard  interface{}
}

// WithLogger sets the logger used by the pipeline and its layers. The
// default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHandlers installs an event handler group in the pipeline.
func WithHandlers(g *HandlerGroup) Option {
	return func(o *options) {
		o.handlers = g
	}
}

// WithLimiter replaces the in-process fixed-window limiter built from
// the Config with lim, for example a ratelimit.RedisWindow shared by
// several processes. The rate-limit fields of the Config are then
// ignored.
func WithLimiter(lim ratelimit.Limiter) Option {
	return func(o *options) {
		o.limiter = lim
	}
}

// WithClock sets the clock used for call records and the built-in
// rate-limit window. Timeouts are always measured on the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithTimeoutPolicy replaces the fixed timeout built from the Config
// with p. The Timeout field of the Config is then ignored.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithDiscard sets a function which receives the result of every inner
// call that completes after its timeout fired. The type parameter must
// match the response type of the pipeline, otherwise New fails.
func WithDiscard[Res any](f func(Res, error)) Option {
	return func(o *options) {
		o.discard = f
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	return o
}
