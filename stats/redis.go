// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix is the key prefix of a RedisStore unless
	// WithPrefix says otherwise.
	DefaultRedisPrefix = "layerx:stats"
	// DefaultRedisTTL is the lifetime of per-minute buckets unless
	// WithTTL says otherwise.
	DefaultRedisTTL = 24 * time.Hour
	// durationField accumulates call durations in milliseconds.
	durationField = "duration_ms"
)

// A RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the prefix of every key the store writes.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// WithTTL sets the lifetime of per-minute buckets. A TTL of zero keeps
// buckets forever. The running total never expires.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// WithMinuteBuckets turns per-minute buckets on or off. They are on by
// default.
func WithMinuteBuckets(on bool) RedisOption {
	return func(s *RedisStore) { s.minutes = on }
}

// A RedisStore counts outcomes in Redis hashes.
//
// The hash <prefix>:total holds one field per outcome plus the field
// duration_ms. Each hash <prefix>:minute:<yyyymmddhhmm> holds the same
// fields for the events of one UTC minute.
type RedisStore struct {
	rdb     redis.UniversalClient
	prefix  string
	ttl     time.Duration
	minutes bool
}

// NewRedisStore returns a store writing through rdb.
func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:     rdb,
		prefix:  DefaultRedisPrefix,
		ttl:     DefaultRedisTTL,
		minutes: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record increments the counters for ev in one pipelined round trip.
func (s *RedisStore) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)
	ms := ev.Duration.Milliseconds()

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)
	pipe.HIncrBy(ctx, s.totalKey(), durationField, ms)

	if s.minutes {
		bucketKey := s.minuteKey(at)
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		pipe.HIncrBy(ctx, bucketKey, durationField, ms)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Totals returns the running count of every outcome.
func (s *RedisStore) Totals(ctx context.Context) (map[Outcome]int64, error) {
	return s.read(ctx, s.totalKey())
}

// Minute returns the count of every outcome in the UTC minute holding
// at.
func (s *RedisStore) Minute(ctx context.Context, at time.Time) (map[Outcome]int64, error) {
	return s.read(ctx, s.minuteKey(at))
}

func (s *RedisStore) read(ctx context.Context, key string) (map[Outcome]int64, error) {
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[Outcome]int64, len(Outcomes()))
	for _, o := range Outcomes() {
		v, ok := fields[string(o)]
		if !ok {
			out[o] = 0
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, err
		}
		out[o] = n
	}
	return out, nil
}

func (s *RedisStore) totalKey() string {
	return s.prefix + ":total"
}

func (s *RedisStore) minuteKey(at time.Time) string {
	return s.prefix + ":minute:" + at.UTC().Format("200601021504")
}
