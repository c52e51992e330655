// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript atomically counts one take against the window stored at
// KEYS[1]. The key expires when the window does, which starts the next
// window at the first take after expiry.
var takeScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if n > tonumber(ARGV[1]) then
	return 0
end
return 1
`)

// A RedisWindow is a fixed-window counter kept in Redis. All RedisWindow
// values sharing a Redis server and key share one budget.
type RedisWindow struct {
	client   redis.UniversalClient
	key      string
	capacity int
	window   time.Duration
}

// NewRedisWindow returns a limiter admitting up to capacity takes in
// every window, counting takes in the Redis key key.
//
// The window must be at least one millisecond, the resolution of Redis
// key expiry.
func NewRedisWindow(client redis.UniversalClient, key string, capacity int, window time.Duration) (*RedisWindow, error) {
	if client == nil {
		return nil, errors.New("layerx/ratelimit: nil redis client")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("layerx/ratelimit: empty redis key")
	}
	if err := validate(capacity, window); err != nil {
		return nil, err
	}
	if window < time.Millisecond {
		return nil, errors.New("layerx/ratelimit: redis window must be at least 1ms")
	}
	return &RedisWindow{
		client:   client,
		key:      key,
		capacity: capacity,
		window:   window,
	}, nil
}

// Available reports whether fewer than capacity takes have been counted
// in the current window.
func (w *RedisWindow) Available(ctx context.Context) (bool, error) {
	n, err := w.client.Get(ctx, w.key).Int()
	if err == redis.Nil {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return n < w.capacity, nil
}

// Take counts a take in the current window, reporting whether it was
// within the capacity.
func (w *RedisWindow) Take(ctx context.Context) (bool, error) {
	ok, err := takeScript.Run(ctx, w.client, []string{w.key}, w.capacity, w.window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return ok == 1, nil
}
