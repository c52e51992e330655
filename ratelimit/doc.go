// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package ratelimit provides the pipeline layer which bounds the number of
invocations admitted per time window.

The layer delegates the counting to a Limiter. Three limiters are
provided:

• NewFixedWindow, an in-process fixed-window counter. This is the
default limiter of a layerx pipeline;

• NewRedisWindow, the same fixed-window counter kept in Redis, so that
several processes can share one budget; and

• NewTokenBucket, a token bucket refilled smoothly over the window
rather than all at once at the start of each window.

For example, to admit at most 100 calls every 100 milliseconds:

	lim, err := ratelimit.NewFixedWindow(100, 100*time.Millisecond)
	...
	layer := ratelimit.New(next, lim)
*/
package ratelimit
