// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gogama/layerx/service"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// A Layer is a service which bounds the wall-clock duration of each
// invocation of the service it wraps.
//
// When the deadline of an invocation elapses before the wrapped service
// responds, Invoke returns a *service.Error of kind service.Timeout and
// the wrapped service's result, whenever it arrives, is discarded. The
// wrapped service is invoked with a context carrying the deadline, so a
// service which honors its context is cancelled as well.
//
// Deadlines are measured on the wall clock.
//
// Layer adds no admission policy of its own: Ready is passed through to
// the wrapped service unmodified.
//
// Configure the exported fields before the first call. A Layer must not
// be copied after first use.
type Layer[Req, Res any] struct {
	// Next is the wrapped service. It must not be nil.
	Next service.Service[Req, Res]
	// Policy chooses the timeout for each invocation.
	//
	// If Policy is nil, DefaultPolicy is used.
	Policy Policy
	// Discard, if not nil, receives the result of every invocation of
	// Next which completes after its deadline has fired, for example to
	// release resources held by the late response.
	Discard func(Res, error)
	// Logger receives debug logs about discarded results.
	//
	// If Logger is nil, nothing is logged.
	Logger *zap.Logger

	timeouts atomic.Int64
}

// New returns a timeout layer wrapping next and using policy p.
func New[Req, Res any](next service.Service[Req, Res], p Policy) *Layer[Req, Res] {
	if next == nil {
		panic("layerx/timeout: nil service")
	}
	return &Layer[Req, Res]{Next: next, Policy: p}
}

// Ready returns the readiness of the wrapped service.
func (l *Layer[Req, Res]) Ready(ctx context.Context) service.Readiness {
	return l.Next.Ready(ctx)
}

// Invoke invokes the wrapped service, and returns its result if it
// arrives before the deadline, or a timeout error otherwise.
func (l *Layer[Req, Res]) Invoke(ctx context.Context, req Req) (Res, error) {
	pc := l.begin()
	callCtx, cancel := pc.context(ctx)
	defer cancel()

	done := make(chan result[Res], 1)
	go func() {
		res, err := l.Next.Invoke(callCtx, req)
		done <- result[Res]{res, err}
	}()

	select {
	case r := <-done:
		if expired(ctx, callCtx, r.err) {
			l.timeouts.Inc()
			return r.res, pc.timeoutError()
		}
		l.timeouts.Store(0)
		return r.res, r.err
	case <-callCtx.Done():
		go l.discard(done)
		if err := ctx.Err(); err != nil {
			var zero Res
			return zero, err
		}
		l.timeouts.Inc()
		var zero Res
		return zero, pc.timeoutError()
	}
}

// expired reports whether err means the wrapped service gave up because
// the deadline on callCtx fired. Rejections from inner layers keep their
// own kind even when they land on the deadline.
func expired(ctx, callCtx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil || callCtx.Err() != context.DeadlineExceeded {
		return false
	}
	var serr *service.Error
	return !errors.As(err, &serr)
}

func (l *Layer[Req, Res]) begin() pendingCall {
	p := l.Policy
	if p == nil {
		p = DefaultPolicy
	}
	pc := pendingCall{startedAt: time.Now()}
	if d := p.Timeout(int(l.timeouts.Load())); d < math.MaxInt64 {
		pc.deadline = pc.startedAt.Add(d)
	}
	return pc
}

func (l *Layer[Req, Res]) discard(done <-chan result[Res]) {
	r := <-done
	if l.Logger != nil {
		l.Logger.Debug("discarding late result", zap.Error(r.err))
	}
	if l.Discard != nil {
		l.Discard(r.res, r.err)
	}
}

type result[Res any] struct {
	res Res
	err error
}

// pendingCall is an invocation accepted by the layer but not yet
// resolved. A zero deadline means the invocation never times out.
type pendingCall struct {
	startedAt time.Time
	deadline  time.Time
}

func (pc pendingCall) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if pc.deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, pc.deadline)
}

func (pc pendingCall) timeoutError() error {
	return &service.Error{
		Kind:     service.Timeout,
		Deadline: pc.deadline,
		Elapsed:  time.Since(pc.startedAt),
	}
}
