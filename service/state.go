// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package service

import "context"

// A State is a stage in the life of one call through a pipeline.
//
// Every call starts Idle. A call the pipeline admits moves to Admitted
// when it consumes a rate-limit token and to InFlight when it is handed
// to the inner transport. Every call ends Completed or Failed. A call
// rejected at admission goes straight from Idle (or Admitted, if it was
// shed after taking a token) to Failed.
type State int32

const (
	Idle State = iota
	Admitted
	InFlight
	Completed
	Failed
)

var stateNames = []string{
	"Idle",
	"Admitted",
	"InFlight",
	"Completed",
	"Failed",
}

// String returns the name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(?)"
	}
	return stateNames[s]
}

type stateFuncKey struct{}

// WithStateFunc returns a copy of ctx carrying f. Layers report state
// transitions of the call running under the returned context to f.
func WithStateFunc(ctx context.Context, f func(State)) context.Context {
	return context.WithValue(ctx, stateFuncKey{}, f)
}

// Transition reports the state s to the state function carried by ctx,
// if any.
func Transition(ctx context.Context, s State) {
	if f, ok := ctx.Value(stateFuncKey{}).(func(State)); ok && f != nil {
		f(s)
	}
}
