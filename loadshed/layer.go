// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package loadshed

import (
	"context"

	"github.com/gogama/layerx/service"
)

// A Layer is a service which turns the unreadiness of the service it
// wraps into an immediate rejection.
//
// Where the wrapped service reports service.NotReady, asking the caller
// to wait, Layer reports service.Shedding, and Invoke fails with
// service.ErrShed without ever calling the wrapped service.
type Layer[Req, Res any] struct {
	// Next is the wrapped service. It must not be nil.
	Next service.Service[Req, Res]
}

// New returns a load-shed layer wrapping next.
func New[Req, Res any](next service.Service[Req, Res]) *Layer[Req, Res] {
	if next == nil {
		panic("layerx/loadshed: nil service")
	}
	return &Layer[Req, Res]{Next: next}
}

// Ready returns service.Ready if the wrapped service is ready, and
// service.Shedding otherwise.
func (l *Layer[Req, Res]) Ready(ctx context.Context) service.Readiness {
	if l.Next.Ready(ctx) != service.Ready {
		return service.Shedding
	}
	return service.Ready
}

// Invoke invokes the wrapped service if it is ready, and fails with
// service.ErrShed otherwise. The wrapped service's result is returned
// unmodified.
func (l *Layer[Req, Res]) Invoke(ctx context.Context, req Req) (Res, error) {
	if l.Ready(ctx) != service.Ready {
		var zero Res
		return zero, service.ErrShed
	}
	service.Transition(ctx, service.InFlight)
	return l.Next.Invoke(ctx, req)
}
