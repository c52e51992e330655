// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"context"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/gogama/layerx/service"
	"github.com/gogama/layerx/transient"
	"go.uber.org/atomic"
)

// A Call represents the state of a single call through a Pipeline.
//
// When a Pipeline receives a call, a Call is created for it and passed
// to every event handler fired during the call. The Call is updated as
// the call moves through the layers and is complete once AfterCall
// fires.
//
// Event handlers may set values on a Call using its SetValue method and
// read them back using the Value method. They should treat the exported
// fields as read-only.
type Call struct {
	// Request is the request being sent. It is never nil for calls
	// made through an HTTP pipeline.
	Request interface{}

	// Response is the response returned by the inner service. It is
	// nil until the call ends, and remains nil if the call failed.
	Response interface{}

	// Start is the time the pipeline received the call. It is set
	// before BeforeCall fires and remains constant thereafter.
	Start time.Time

	// End is the time the call ended. It contains the zero value until
	// the call ends.
	End time.Time

	// Err is the error the call ended with. It is nil until the call
	// ends, and remains nil if the call completed.
	//
	// Rejections by the pipeline's own layers have the type
	// *service.Error. Any other error came from the inner service.
	Err error

	clock clock.Clock
	state atomic.Int32
	data  context.Context
}

func newCall(req interface{}, clk clock.Clock) *Call {
	return &Call{
		Request: req,
		Start:   clk.Now(),
		clock:   clk,
	}
}

// State returns the current state of the call.
//
// The state only ever moves forward: Idle, then Admitted, then
// InFlight, then one of Completed or Failed. A call rejected by the
// pipeline skips straight to Failed.
func (c *Call) State() service.State {
	return service.State(c.state.Load())
}

func (c *Call) advance(s service.State) {
	for {
		cur := c.state.Load()
		if service.State(cur) >= s || service.State(cur) >= service.Completed {
			return
		}
		if c.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

// Kind returns the kind of error the call ended with. It panics if the
// call has not failed.
func (c *Call) Kind() service.Kind {
	return service.KindOf(c.Err)
}

// Duration returns the duration of the call.
//
// If the call has ended, the duration is End minus Start. Otherwise it
// is the current time minus Start.
func (c *Call) Duration() time.Duration {
	if !c.Ended() {
		return c.now().Sub(c.Start)
	}

	return c.End.Sub(c.Start)
}

// Ended indicates whether the call has ended.
func (c *Call) Ended() bool {
	return c.End != (time.Time{})
}

// Timeout indicates whether Err currently contains a non-nil value
// which indicates a timeout, whether raised by the pipeline's timeout
// layer or by the inner service.
func (c *Call) Timeout() bool {
	return transient.Categorize(c.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the call.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type.
func (c *Call) SetValue(key, value interface{}) {
	ctx := c.data
	if ctx == nil {
		ctx = context.Background()
	}

	c.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this call for key, or
// nil if there is no value associated with key.
func (c *Call) Value(key interface{}) interface{} {
	ctx := c.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}

func (c *Call) now() time.Time {
	if c.clock == nil {
		return time.Now()
	}
	return c.clock.Now()
}
