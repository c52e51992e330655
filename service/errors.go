// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"errors"
	"fmt"
	"time"
)

// A Kind classifies the outcome of a failed invocation.
type Kind int

const (
	// Inner indicates the inner transport itself failed. Inner errors
	// are passed upward unchanged.
	Inner Kind = iota
	// Shed indicates the load-shed layer rejected the call because the
	// inner transport was not ready.
	Shed
	// RateLimited indicates no rate-limit token was available, either
	// at admission or because a concurrent caller took the last one.
	RateLimited
	// Timeout indicates the deadline elapsed before the inner transport
	// completed.
	Timeout
)

var kindNames = []string{
	"inner",
	"shed",
	"rate limited",
	"timeout",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

var (
	// ErrShed matches any rejection by the load-shed layer.
	ErrShed = &Error{Kind: Shed}
	// ErrRateLimited matches any rejection by the rate-limit layer.
	ErrRateLimited = &Error{Kind: RateLimited}
	// ErrTimeout matches any timeout reported by the timeout layer.
	ErrTimeout = &Error{Kind: Timeout}
)

// An Error is a rejection produced by one of the pipeline layers.
//
// Errors compare equal under errors.Is when their kinds match, so
// errors.Is(err, ErrTimeout) reports whether err is any timeout error.
type Error struct {
	// Kind is the rejection kind. It is never Inner.
	Kind Kind
	// Deadline is the call deadline. It is only set on Timeout errors.
	Deadline time.Time
	// Elapsed is the time between the start of the call and the moment
	// the deadline fired. It is only set on Timeout errors.
	Elapsed time.Duration
	// Err is an optional cause, for example a rate limiter backend
	// failure.
	Err error
}

func (e *Error) Error() string {
	msg := "layerx: " + e.Kind.String()
	if e.Kind == Timeout && e.Elapsed > 0 {
		msg = fmt.Sprintf("%s after %s", msg, e.Elapsed)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Timeout reports whether the error is a timeout. It allows timeout
// errors to be recognized by code which checks for a Timeout method, as
// is customary for net.Error.
func (e *Error) Timeout() bool {
	return e.Kind == Timeout
}

// KindOf returns the kind of a non-nil error. Any error which is not a
// layer rejection is of kind Inner. KindOf panics if err is nil.
func KindOf(err error) Kind {
	if err == nil {
		panic("layerx/service: nil error")
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Inner
}
