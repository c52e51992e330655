// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"context"
	"fmt"

	"github.com/andres-erbsen/clock"
	"github.com/gogama/layerx/loadshed"
	"github.com/gogama/layerx/ratelimit"
	"github.com/gogama/layerx/service"
	"github.com/gogama/layerx/timeout"
	"go.uber.org/zap"
)

// A Pipeline is an inner service wrapped, from the outside in, by a
// timeout layer, a rate-limit layer, and a load-shed layer.
//
// A Pipeline is itself a service.Service. Use Call to poll readiness
// and invoke in one step.
//
// Pipeline is safe for concurrent use by multiple goroutines. Limiter
// state persists across calls for the life of the Pipeline.
type Pipeline[Req, Res any] struct {
	outer    service.Service[Req, Res]
	limiter  ratelimit.Limiter
	handlers *HandlerGroup
	logger   *zap.Logger
	clock    clock.Clock
}

// New builds a Pipeline around inner using the parameters in cfg.
//
// Zero fields in cfg take their defaults. New fails if cfg is invalid,
// or if a WithDiscard option does not match the response type.
func New[Req, Res any](inner service.Service[Req, Res], cfg Config, opts ...Option) (*Pipeline[Req, Res], error) {
	if inner == nil {
		panic("layerx: nil service")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	o := buildOptions(opts)

	lim := o.limiter
	if lim == nil {
		var err error
		lim, err = ratelimit.NewFixedWindow(cfg.RateLimitCapacity, cfg.RateLimitWindow, ratelimit.WithClock(o.clock))
		if err != nil {
			return nil, err
		}
	}
	policy := o.policy
	if policy == nil {
		policy = timeout.Fixed(cfg.Timeout)
	}
	var discard func(Res, error)
	if o.discard != nil {
		f, ok := o.discard.(func(Res, error))
		if !ok {
			return nil, fmt.Errorf("layerx: discard function %T does not match response type", o.discard)
		}
		discard = f
	}

	shed := loadshed.New(inner)
	limit := ratelimit.New[Req, Res](shed, lim)
	limit.Logger = o.logger
	tmo := timeout.New[Req, Res](limit, policy)
	tmo.Discard = discard
	tmo.Logger = o.logger

	return &Pipeline[Req, Res]{
		outer:    tmo,
		limiter:  lim,
		handlers: o.handlers,
		logger:   o.logger,
		clock:    o.clock,
	}, nil
}

// Limiter returns the limiter counting the pipeline's admissions.
func (p *Pipeline[Req, Res]) Limiter() ratelimit.Limiter {
	return p.limiter
}

// Ready returns the readiness of the composed layers: service.Shedding
// if the inner service is not ready, service.NotReady if the rate
// limit is exhausted, and service.Ready otherwise.
func (p *Pipeline[Req, Res]) Ready(ctx context.Context) service.Readiness {
	return p.outer.Ready(ctx)
}

// Invoke sends req through the layers to the inner service, firing
// event handlers along the way.
//
// Invoke re-runs the admission checks of every layer, so a caller that
// did not poll Ready first gets a rejection error rather than an
// over-limit call.
func (p *Pipeline[Req, Res]) Invoke(ctx context.Context, req Req) (Res, error) {
	c := p.begin(req)
	ctx = service.WithStateFunc(ctx, c.advance)
	res, err := p.outer.Invoke(ctx, req)
	return p.end(c, res, err)
}

// Call polls the pipeline for readiness and invokes it if it is ready.
//
// If the pipeline is shedding, Call fails with an error matching
// service.ErrShed. If it is not ready, which only happens when the rate
// limit is exhausted, Call fails with an error matching
// service.ErrRateLimited. Neither rejection consumes a rate-limit token.
func (p *Pipeline[Req, Res]) Call(ctx context.Context, req Req) (Res, error) {
	switch p.Ready(ctx) {
	case service.Shedding:
		var zero Res
		return p.end(p.begin(req), zero, service.ErrShed)
	case service.NotReady:
		var zero Res
		return p.end(p.begin(req), zero, service.ErrRateLimited)
	default:
		return p.Invoke(ctx, req)
	}
}

func (p *Pipeline[Req, Res]) begin(req Req) *Call {
	c := newCall(req, p.clock)
	p.handlers.run(BeforeCall, c)
	return c
}

func (p *Pipeline[Req, Res]) end(c *Call, res Res, err error) (Res, error) {
	c.End = p.clock.Now()
	if err != nil {
		c.Err = err
		c.advance(service.Failed)
		kind := service.KindOf(err)
		if kind != service.Inner {
			p.logger.Debug("call rejected",
				zap.Stringer("kind", kind),
				zap.Duration("duration", c.Duration()),
				zap.Error(err))
		}
		p.handlers.run(failureEvent(kind), c)
	} else {
		c.Response = res
		c.advance(service.Completed)
	}
	p.handlers.run(AfterCall, c)
	return res, err
}
