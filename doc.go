// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package layerx wraps a request/response service in a small, fixed stack
of layers which bound its latency and throughput and make it fail fast
under overload.

From the outside in, a Pipeline applies a timeout, a rate limit, and a
load shedder to an inner service:

	p, err := layerx.New[Req, Res](inner, layerx.Config{
		Timeout:           2 * time.Second,
		RateLimitCapacity: 100,
		RateLimitWindow:   100 * time.Millisecond,
	})
	...
	res, err := p.Call(ctx, req)

Call polls the pipeline for readiness and invokes it only if it is
ready. A call may fail with an error from the inner service, or with a
rejection from one of the layers, which matches one of
service.ErrShed, service.ErrRateLimited, or service.ErrTimeout:

	if errors.Is(err, service.ErrRateLimited) {
		...
	}

For HTTP, build a pipeline over a transport.Client and use the Get,
Head, Post, and PostForm helpers:

	client := transport.NewClient(&http.Client{}, transport.WithMaxInFlight(16))
	p, err := layerx.NewHTTP(layerx.Config{}, client)
	...
	res, err := layerx.Get(ctx, p, "http://httpbin.org/ip")

To share one rate-limit budget among several processes, install a
limiter backed by Redis:

	lim, err := ratelimit.NewRedisWindow(rdb, "layerx:api", 100, time.Second)
	...
	p, err := layerx.NewHTTP(cfg, client, layerx.WithLimiter(lim))

To hook into the life of each call, install a handler into the
appropriate handler chain:

	handlers := &layerx.HandlerGroup{}
	handlers.PushBack(layerx.AfterRateLimit, layerx.HandlerFunc(
		func(_ layerx.Event, c *layerx.Call) {
			logger.Info("rate limited", zap.Any("request", c.Request))
		}))
	p, err := layerx.NewHTTP(cfg, client, layerx.WithHandlers(handlers))

Package stats provides a ready-made handler which counts call outcomes.
*/
package layerx
