// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"context"
	"time"

	"github.com/gogama/layerx"
	"github.com/gogama/layerx/service"
	"go.uber.org/atomic"
)

// An Outcome is the way a call through a pipeline ended.
type Outcome string

const (
	// Completed means the inner service returned a response.
	Completed Outcome = "completed"
	// Shed means the load-shed layer rejected the call.
	Shed Outcome = "shed"
	// RateLimited means the rate-limit layer rejected the call.
	RateLimited Outcome = "rate_limited"
	// Timeout means the timeout layer gave up on the call.
	Timeout Outcome = "timeout"
	// Error means the inner service returned an error.
	Error Outcome = "error"
)

// Outcomes returns every Outcome.
func Outcomes() []Outcome {
	return []Outcome{Completed, Shed, RateLimited, Timeout, Error}
}

// OutcomeOf returns the outcome of an ended call.
func OutcomeOf(c *layerx.Call) Outcome {
	if c.Err == nil {
		return Completed
	}
	switch c.Kind() {
	case service.Shed:
		return Shed
	case service.RateLimited:
		return RateLimited
	case service.Timeout:
		return Timeout
	default:
		return Error
	}
}

// An Event describes one ended call.
type Event struct {
	Outcome  Outcome
	Duration time.Duration
	At       time.Time
}

// A Store persists call events.
//
// Recording is best effort: callers log a failure and carry on.
type Store interface {
	Record(ctx context.Context, ev Event) error
}

// A MemoryStore counts outcomes in process. The zero value is not
// usable; use NewMemoryStore.
type MemoryStore struct {
	counts map[Outcome]*atomic.Int64
	total  atomic.Int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{counts: make(map[Outcome]*atomic.Int64, len(Outcomes()))}
	for _, o := range Outcomes() {
		s.counts[o] = atomic.NewInt64(0)
	}
	return s
}

// Record counts ev. It fails only if the outcome is unknown.
func (s *MemoryStore) Record(_ context.Context, ev Event) error {
	c, ok := s.counts[ev.Outcome]
	if !ok {
		return &UnknownOutcomeError{Outcome: ev.Outcome}
	}
	c.Inc()
	s.total.Inc()
	return nil
}

// Count returns the number of recorded events with outcome o.
func (s *MemoryStore) Count(o Outcome) int64 {
	if c, ok := s.counts[o]; ok {
		return c.Load()
	}
	return 0
}

// Total returns the number of recorded events.
func (s *MemoryStore) Total() int64 {
	return s.total.Load()
}

// Snapshot returns the count of every outcome.
func (s *MemoryStore) Snapshot() map[Outcome]int64 {
	out := make(map[Outcome]int64, len(s.counts))
	for o, c := range s.counts {
		out[o] = c.Load()
	}
	return out
}

// UnknownOutcomeError is returned when recording an event whose outcome
// is not one of Outcomes().
type UnknownOutcomeError struct {
	Outcome Outcome
}

func (e *UnknownOutcomeError) Error() string {
	return "layerx/stats: unknown outcome " + string(e.Outcome)
}
