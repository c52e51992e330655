// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import "time"

// A Policy defines a timeout policy which may be plugged into a timeout
// Layer to direct how long each invocation may run.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next invocation.
	//
	// Parameter timeouts is the number of consecutive invocations,
	// immediately preceding this one, which timed out. It is zero if
	// the most recent invocation did not time out.
	Timeout(timeouts int) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 500 seconds on each invocation.
var DefaultPolicy Policy = Fixed(500 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value to set
// every invocation timeout. The return value is a timeout policy that
// always returns the value d.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the preceding invocations timed out.
//
// Use Adaptive if the inner service often exhibits one-off slow response
// times that are best cut off quickly, but you also need to tolerate a
// burst of slowness where most response times are slower than the usual
// quick timeout.
//
// Parameter usual is the timeout the policy returns when the preceding
// invocation did not time out.
//
// Parameter after contains timeout values the policy returns after
// consecutive timeouts. After one timeout, after[0] is returned; after
// two in a row, after[1], and so on. If more invocations have timed out
// in a row than after has elements, the last element of after is
// returned.
//
// Consider the following timeout policy:
//
// 	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout but if the
// preceding invocation timed out, it will use 1 second; and if the two
// or more preceding invocations timed out, it will use 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(timeouts int) time.Duration {
	i := timeouts
	if i < 0 {
		i = 0
	} else if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
