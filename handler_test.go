// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerGroup(t *testing.T) {
	var evts []string
	var calls []*Call
	h1 := &testHandler{seq: 1, evts: &evts, calls: &calls}
	h2 := &testHandler{seq: 2, evts: &evts, calls: &calls}
	g := &HandlerGroup{}
	t.Run("PushBack", func(t *testing.T) {
		assert.Panics(t, func() { g.PushBack(BeforeCall, nil) })
		assert.Panics(t, func() { g.PushBack(Event(123), h1) })
		g.PushBack(BeforeCall, h1)
		g.PushBack(BeforeCall, h2)
		g.PushBack(AfterCall, h1)
	})
	t.Run("run", func(t *testing.T) {
		c1 := &Call{Request: 1}
		c2 := &Call{Request: 2}
		assert.Empty(t, evts)
		assert.Empty(t, calls)
		g.run(AfterTimeout, c1)
		assert.Empty(t, evts)
		assert.Empty(t, calls)
		g.run(BeforeCall, c1)
		assert.Equal(t, []string{"1.BeforeCall", "2.BeforeCall"}, evts)
		assert.Equal(t, []*Call{c1, c1}, calls)
		evts = evts[:0]
		calls = calls[:0]
		g.run(AfterCall, c2)
		assert.Equal(t, []string{"1.AfterCall"}, evts)
		assert.Equal(t, []*Call{c2}, calls)
	})
	t.Run("nil group", func(t *testing.T) {
		var nilGroup *HandlerGroup
		assert.NotPanics(t, func() { nilGroup.run(BeforeCall, &Call{}) })
	})
}

type testHandler struct {
	seq   int
	evts  *[]string
	calls *[]*Call
}

func (h *testHandler) Handle(evt Event, c *Call) {
	*h.evts = append(*h.evts, fmt.Sprintf("%d.%s", h.seq, evt))
	*h.calls = append(*h.calls, c)
}

func TestHandlerFunc(t *testing.T) {
	var _evt Event
	var _c *Call
	var f = func(evt Event, c *Call) {
		_evt = evt
		_c = c
	}
	h := HandlerFunc(f)
	c := &Call{}
	h.Handle(AfterShed, c)

	assert.Equal(t, AfterShed, _evt)
	assert.Same(t, c, _c)
}
