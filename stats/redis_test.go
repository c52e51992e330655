// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreNil(t *testing.T) {
	var s *RedisStore
	assert.NoError(t, s.Record(context.Background(), Event{Outcome: Completed}))
	assert.NoError(t, NewRedisStore(nil).Record(context.Background(), Event{Outcome: Completed}))
}

func TestRedisStoreKeys(t *testing.T) {
	s := NewRedisStore(nil, WithPrefix(":custom:"))
	at := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "custom:total", s.totalKey())
	assert.Equal(t, "custom:minute:202103040506", s.minuteKey(at))
	assert.Equal(t, DefaultRedisTTL, s.ttl)
	assert.True(t, s.minutes)
}

// TestRedisStore needs a live Redis server, whose address is taken from
// the LAYERX_TEST_REDIS_ADDR environment variable.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LAYERX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LAYERX_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()
	prefix := fmt.Sprintf("layerx:test:stats:%d", time.Now().UnixNano())
	s := NewRedisStore(client, WithPrefix(prefix), WithTTL(time.Minute))
	at := time.Now()
	defer client.Del(ctx, s.totalKey(), s.minuteKey(at))

	require.NoError(t, s.Record(ctx, Event{Outcome: Completed, Duration: 5 * time.Millisecond, At: at}))
	require.NoError(t, s.Record(ctx, Event{Outcome: Completed, Duration: 7 * time.Millisecond, At: at}))
	require.NoError(t, s.Record(ctx, Event{Outcome: RateLimited, At: at}))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals[Completed])
	assert.Equal(t, int64(1), totals[RateLimited])
	assert.Equal(t, int64(0), totals[Timeout])

	minute, err := s.Minute(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, totals, minute)

	ms, err := client.HGet(ctx, s.totalKey(), durationField).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(12), ms)

	ttl, err := client.TTL(ctx, s.minuteKey(at)).Result()
	require.NoError(t, err)
	assert.Greater(t, int64(ttl), int64(0))
}
