// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestFixedWindowInvalid(t *testing.T) {
	_, err := NewFixedWindow(0, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindow(-1, time.Second)
	assert.Error(t, err)
	_, err = NewFixedWindow(1, 0)
	assert.Error(t, err)
}

func TestFixedWindow(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	w, err := NewFixedWindow(2, 100*time.Millisecond, WithClock(mock))
	require.NoError(t, err)

	take := func() bool {
		ok, err := w.Take(ctx)
		require.NoError(t, err)
		return ok
	}
	available := func() bool {
		ok, err := w.Available(ctx)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, available())
	assert.Equal(t, 2, w.Tokens())
	assert.True(t, take(), "t=0ms")
	mock.Add(10 * time.Millisecond)
	assert.True(t, take(), "t=10ms")
	assert.Equal(t, 0, w.Tokens())
	mock.Add(10 * time.Millisecond)
	assert.False(t, available(), "t=20ms")
	assert.False(t, take(), "t=20ms")
	assert.Equal(t, 0, w.Tokens(), "tokens never go negative")
	mock.Add(79 * time.Millisecond)
	assert.False(t, take(), "t=99ms")
	mock.Add(6 * time.Millisecond)
	assert.True(t, available(), "t=105ms")
	assert.True(t, take(), "t=105ms")
	assert.Equal(t, 1, w.Tokens())
}

func TestFixedWindowAnchoredOnFirstUse(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	w, err := NewFixedWindow(1, time.Second, WithClock(mock))
	require.NoError(t, err)

	mock.Add(10 * time.Hour)
	ok, _ := w.Take(ctx)
	assert.True(t, ok)
	mock.Add(999 * time.Millisecond)
	ok, _ = w.Take(ctx)
	assert.False(t, ok)
	mock.Add(time.Millisecond)
	ok, _ = w.Take(ctx)
	assert.True(t, ok)
}

func TestFixedWindowIdenticalDecisions(t *testing.T) {
	offsets := []time.Duration{0, 3, 7, 7, 40, 99, 100, 101, 150, 199, 200, 260}
	run := func() []bool {
		mock := clock.NewMock()
		w, err := NewFixedWindow(3, 100*time.Millisecond, WithClock(mock))
		require.NoError(t, err)
		var prev time.Duration
		decisions := make([]bool, 0, len(offsets))
		for _, off := range offsets {
			mock.Add((off - prev) * time.Millisecond)
			prev = off
			ok, _ := w.Take(context.Background())
			decisions = append(decisions, ok)
		}
		return decisions
	}
	assert.Equal(t, run(), run())
}

func TestFixedWindowConcurrent(t *testing.T) {
	const capacity = 10
	mock := clock.NewMock()
	w, err := NewFixedWindow(capacity, time.Minute, WithClock(mock))
	require.NoError(t, err)

	var wg sync.WaitGroup
	admitted := atomic.NewInt32(0)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := w.Take(context.Background()); ok {
				admitted.Inc()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(capacity), admitted.Load())
	assert.Equal(t, 0, w.Tokens())
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	_, err := NewTokenBucket(0, time.Second)
	assert.Error(t, err)

	mock := clock.NewMock()
	b, err := NewTokenBucket(2, 100*time.Millisecond, WithClock(mock))
	require.NoError(t, err)

	ok, _ := b.Available(ctx)
	assert.True(t, ok)
	ok, _ = b.Take(ctx)
	assert.True(t, ok)
	ok, _ = b.Take(ctx)
	assert.True(t, ok)
	ok, _ = b.Available(ctx)
	assert.False(t, ok)
	ok, _ = b.Take(ctx)
	assert.False(t, ok)

	// One token refills every 50ms.
	mock.Add(50 * time.Millisecond)
	ok, _ = b.Take(ctx)
	assert.True(t, ok)
	ok, _ = b.Take(ctx)
	assert.False(t, ok)

	// Never more than capacity, however long the bucket idles.
	mock.Add(time.Hour)
	for i := 0; i < 2; i++ {
		ok, _ = b.Take(ctx)
		assert.True(t, ok)
	}
	ok, _ = b.Take(ctx)
	assert.False(t, ok)
}
