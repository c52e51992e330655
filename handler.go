// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

// A HandlerGroup is a group of event handler chains which can be
// installed in a Pipeline.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("layerx: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, c *Call) {
	if g == nil {
		return
	}
	i := int(evt)
	if i < len(g.handlers) {
		run(g.handlers[i], evt, c)
	}
}

func run(chain []Handler, evt Event, c *Call) {
	for _, h := range chain {
		h.Handle(evt, c)
	}
}

// A Handler handles the occurrence of an event during a call.
type Handler interface {
	Handle(Event, *Call)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *Call)

// Handle calls f(evt, c).
func (f HandlerFunc) Handle(evt Event, c *Call) {
	f(evt, c)
}
