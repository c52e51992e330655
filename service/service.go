// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package service

import "context"

// Readiness is the result of polling a Service for readiness. It is
// computed fresh on every poll and never stored.
type Readiness int

const (
	// Ready indicates the service will accept an invocation now.
	Ready Readiness = iota
	// NotReady indicates the service cannot accept an invocation now.
	// The caller may poll again later.
	NotReady
	// Shedding indicates the service rejects invocations outright
	// rather than asking the caller to wait.
	Shedding
)

var readinessNames = []string{
	"Ready",
	"NotReady",
	"Shedding",
}

// String returns the name of the readiness value.
func (r Readiness) String() string {
	if r < 0 || int(r) >= len(readinessNames) {
		return "Readiness(?)"
	}
	return readinessNames[r]
}

// A Service is a request/response capability that can report whether it
// is ready to be invoked.
//
// Callers must poll Ready and see the value Ready before calling Invoke.
// Services do not queue callers internally: an implementation that is
// invoked while not ready may fail the call, and the layers in this
// module do so with a typed rejection error.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Service[Req, Res any] interface {
	// Ready reports whether the service can accept an invocation now.
	Ready(ctx context.Context) Readiness
	// Invoke performs the request and returns its response, or an
	// error if the request failed or was rejected.
	Invoke(ctx context.Context, req Req) (Res, error)
}

// Func adapts a pair of ordinary functions into a Service. If ReadyFunc
// is nil, the service is always ready.
type Func[Req, Res any] struct {
	ReadyFunc  func(context.Context) Readiness
	InvokeFunc func(context.Context, Req) (Res, error)
}

// Ready calls f.ReadyFunc(ctx), or returns Ready if it is nil.
func (f Func[Req, Res]) Ready(ctx context.Context) Readiness {
	if f.ReadyFunc == nil {
		return Ready
	}
	return f.ReadyFunc(ctx)
}

// Invoke calls f.InvokeFunc(ctx, req).
func (f Func[Req, Res]) Invoke(ctx context.Context, req Req) (Res, error) {
	return f.InvokeFunc(ctx, req)
}
