// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import "github.com/gogama/layerx/service"

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Pipeline to extend it with custom
// functionality.
type Event int

const (
	// BeforeCall identifies the event that occurs when the pipeline
	// receives a call, before any layer sees it.
	//
	// When the pipeline fires BeforeCall, the call's request and start
	// time are set and its state is Idle.
	BeforeCall Event = iota
	// AfterShed identifies the event that occurs after the load-shed
	// layer rejected a call because the inner service was not ready.
	//
	// When the pipeline fires AfterShed, the call's error field is set
	// to a *service.Error of kind service.Shed.
	AfterShed
	// AfterRateLimit identifies the event that occurs after the
	// rate-limit layer rejected a call.
	//
	// When the pipeline fires AfterRateLimit, the call's error field is
	// set to a *service.Error of kind service.RateLimited.
	AfterRateLimit
	// AfterTimeout identifies the event that occurs after the timeout
	// layer gave up waiting on the inner service.
	//
	// When the pipeline fires AfterTimeout, the call's error field is
	// set to a *service.Error of kind service.Timeout. The inner
	// service may still be running.
	AfterTimeout
	// AfterError identifies the event that occurs after the inner
	// service returned an error.
	AfterError
	// AfterCall identifies the event that occurs after every call,
	// regardless of how it ended.
	//
	// When the pipeline fires AfterCall, the call has ended. Exactly one
	// of its response and error fields is meaningful.
	AfterCall
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeCall",
	"AfterShed",
	"AfterRateLimit",
	"AfterTimeout",
	"AfterError",
	"AfterCall",
}

// Events returns a slice containing all events which can occur during
// a call, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeCall,
		AfterShed,
		AfterRateLimit,
		AfterTimeout,
		AfterError,
		AfterCall,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}

func failureEvent(k service.Kind) Event {
	switch k {
	case service.Shed:
		return AfterShed
	case service.RateLimited:
		return AfterRateLimit
	case service.Timeout:
		return AfterTimeout
	default:
		return AfterError
	}
}
