// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

// slotPool is a finite set of in-flight slots backed by a buffered
// channel. A nil *slotPool has unlimited slots.
type slotPool struct {
	sem chan struct{}
}

func newSlotPool(max int) *slotPool {
	if max <= 0 {
		return nil
	}
	return &slotPool{sem: make(chan struct{}, max)}
}

// tryAcquire takes a slot without blocking. On success it returns a
// release function which must be called exactly once.
func (p *slotPool) tryAcquire() (release func(), ok bool) {
	if p == nil {
		return func() {}, true
	}
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	default:
		return nil, false
	}
}

func (p *slotPool) full() bool {
	return p != nil && len(p.sem) == cap(p.sem)
}

func (p *slotPool) inUse() int {
	if p == nil {
		return 0
	}
	return len(p.sem)
}
