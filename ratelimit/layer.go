// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ratelimit

import (
	"context"

	"github.com/gogama/layerx/service"
	"go.uber.org/zap"
)

// A Layer is a service which admits invocations of the service it wraps
// only while its Limiter has tokens available.
//
// Ready reports service.NotReady when no token is available and
// otherwise the readiness of the wrapped service. Invoke consumes a
// token before delegating, and fails with service.ErrRateLimited,
// without delegating, when there is none. A caller which saw Ready may
// still be rate limited if a concurrent caller took the last token
// first.
//
// Configure the exported fields before the first call.
type Layer[Req, Res any] struct {
	// Next is the wrapped service. It must not be nil.
	Next service.Service[Req, Res]
	// Limiter counts admissions.
	//
	// If Limiter is nil, every invocation is admitted.
	Limiter Limiter
	// Logger receives warnings about Limiter failures.
	//
	// If Logger is nil, nothing is logged.
	Logger *zap.Logger
}

// New returns a rate-limit layer wrapping next and admitting
// invocations against lim.
func New[Req, Res any](next service.Service[Req, Res], lim Limiter) *Layer[Req, Res] {
	if next == nil {
		panic("layerx/ratelimit: nil service")
	}
	return &Layer[Req, Res]{Next: next, Limiter: lim}
}

// Ready reports service.NotReady if no token is available, and
// otherwise the readiness of the wrapped service.
func (l *Layer[Req, Res]) Ready(ctx context.Context) service.Readiness {
	if l.Limiter != nil {
		ok, err := l.Limiter.Available(ctx)
		if err != nil {
			l.warn("rate limiter unavailable", err)
			return service.NotReady
		} else if !ok {
			return service.NotReady
		}
	}
	return l.Next.Ready(ctx)
}

// Invoke consumes a token and invokes the wrapped service, or fails
// with service.ErrRateLimited if no token is available.
func (l *Layer[Req, Res]) Invoke(ctx context.Context, req Req) (Res, error) {
	if l.Limiter != nil {
		ok, err := l.Limiter.Take(ctx)
		if err != nil {
			l.warn("rate limiter unavailable", err)
			var zero Res
			return zero, &service.Error{Kind: service.RateLimited, Err: err}
		} else if !ok {
			var zero Res
			return zero, service.ErrRateLimited
		}
	}
	service.Transition(ctx, service.Admitted)
	return l.Next.Invoke(ctx, req)
}

func (l *Layer[Req, Res]) warn(msg string, err error) {
	if l.Logger != nil {
		l.Logger.Warn(msg, zap.Error(err))
	}
}
