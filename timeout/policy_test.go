// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	assert.Equal(t, 500*time.Second, DefaultPolicy.Timeout(0))
	assert.Equal(t, 500*time.Second, DefaultPolicy.Timeout(3))
}

func TestInfinite(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(0))
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(10))
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	assert.Equal(t, 33*time.Hour, p.Timeout(0))
	assert.Equal(t, 33*time.Hour, p.Timeout(1))
	assert.Equal(t, 33*time.Hour, p.Timeout(2))
}

func TestAdaptive(t *testing.T) {
	p := Adaptive(5*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, p.Timeout(-1))
	assert.Equal(t, 5*time.Millisecond, p.Timeout(0))
	assert.Equal(t, 10*time.Millisecond, p.Timeout(1))
	assert.Equal(t, 100*time.Millisecond, p.Timeout(2))
	assert.Equal(t, 100*time.Millisecond, p.Timeout(3))
	assert.Equal(t, 100*time.Millisecond, p.Timeout(50))

	q := Adaptive(time.Second)
	assert.Equal(t, time.Second, q.Timeout(0))
	assert.Equal(t, time.Second, q.Timeout(4))
}
