// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package stats counts the outcomes of calls through a layerx pipeline.

Install the handler returned by NewHandler in a pipeline's handler group
to record every call into a Store:

	store := stats.NewMemoryStore()
	handlers := &layerx.HandlerGroup{}
	handlers.PushBack(layerx.AfterCall, stats.NewHandler(store, logger))

MemoryStore keeps counters in process. RedisStore keeps them in Redis,
as a running total plus one bucket per minute, so that several processes
can report into the same place.
*/
package stats
