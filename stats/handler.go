// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"context"
	"time"

	"github.com/gogama/layerx"
	"go.uber.org/zap"
)

// recordTimeout bounds the time a handler spends in Store.Record.
const recordTimeout = time.Second

type handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler returns an event handler which records every call into
// store when layerx.AfterCall fires. It ignores all other events.
//
// Store failures are logged as warnings and otherwise ignored. If
// logger is nil, nothing is logged.
func NewHandler(store Store, logger *zap.Logger) layerx.Handler {
	if store == nil {
		panic("layerx/stats: nil store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &handler{store: store, logger: logger}
}

func (h *handler) Handle(evt layerx.Event, c *layerx.Call) {
	if evt != layerx.AfterCall {
		return
	}
	ev := Event{
		Outcome:  OutcomeOf(c),
		Duration: c.Duration(),
		At:       c.End,
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := h.store.Record(ctx, ev); err != nil {
		h.logger.Warn("failed to record call outcome",
			zap.String("outcome", string(ev.Outcome)),
			zap.Error(err))
	}
}
