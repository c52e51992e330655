// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"net/http"

	"github.com/gogama/layerx"
	"github.com/gogama/layerx/internal/config"
	"github.com/gogama/layerx/ratelimit"
	"github.com/gogama/layerx/stats"
	"github.com/gogama/layerx/transport"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// runtime is the set of components built from a Config.
type runtime struct {
	pipeline *layerx.HTTPPipeline
	client   *transport.Client
	rdb      redis.UniversalClient
	memStats *stats.MemoryStore
	logger   *zap.Logger
}

func build(cfg *config.Config, logger *zap.Logger) (_ *runtime, err error) {
	rt := &runtime{logger: logger}
	defer func() {
		if err != nil {
			_ = rt.close()
		}
	}()

	if cfg.NeedsRedis() {
		rt.rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	}

	opts := []layerx.Option{layerx.WithLogger(logger)}

	lim, err := newLimiter(cfg, rt.rdb)
	if err != nil {
		return nil, err
	}
	if lim != nil {
		opts = append(opts, layerx.WithLimiter(lim))
	}

	var store stats.Store
	switch cfg.Stats.Backend {
	case config.StatsMemory:
		rt.memStats = stats.NewMemoryStore()
		store = rt.memStats
	case config.StatsRedis:
		store = stats.NewRedisStore(rt.rdb, stats.WithPrefix(cfg.Stats.Prefix), stats.WithTTL(cfg.Stats.TTL))
	}
	if store != nil {
		handlers := &layerx.HandlerGroup{}
		handlers.PushBack(layerx.AfterCall, stats.NewHandler(store, logger))
		opts = append(opts, layerx.WithHandlers(handlers))
	}

	tr, err := transport.NewHTTPTransport(cfg.Transport.HTTP2)
	if err != nil {
		return nil, fmt.Errorf("failed to configure transport: %w", err)
	}
	rt.client = transport.NewClient(&http.Client{Transport: tr}, transport.WithMaxInFlight(cfg.Transport.MaxInFlight))

	rt.pipeline, err = layerx.NewHTTP(cfg.Pipeline, rt.client, opts...)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// newLimiter returns the limiter selected by cfg, or nil for the
// pipeline's built-in fixed window.
func newLimiter(cfg *config.Config, rdb redis.UniversalClient) (ratelimit.Limiter, error) {
	p := cfg.Pipeline
	d := layerx.DefaultConfig()
	if p.RateLimitCapacity == 0 {
		p.RateLimitCapacity = d.RateLimitCapacity
	}
	if p.RateLimitWindow == 0 {
		p.RateLimitWindow = d.RateLimitWindow
	}

	switch cfg.Limiter.Backend {
	case config.LimiterRedis:
		return ratelimit.NewRedisWindow(rdb, cfg.Limiter.Key, p.RateLimitCapacity, p.RateLimitWindow)
	case config.LimiterTokenBucket:
		return ratelimit.NewTokenBucket(p.RateLimitCapacity, p.RateLimitWindow)
	default:
		return nil, nil
	}
}

// report logs the in-memory call statistics, if any were kept.
func (rt *runtime) report() {
	if rt.memStats == nil {
		return
	}
	fields := make([]zap.Field, 0, len(stats.Outcomes()))
	for _, o := range stats.Outcomes() {
		fields = append(fields, zap.Int64(string(o), rt.memStats.Count(o)))
	}
	rt.logger.Info("call statistics", fields...)
}

func (rt *runtime) close() error {
	if rt.client != nil {
		rt.client.CloseIdleConnections()
	}
	if rt.rdb != nil {
		return rt.rdb.Close()
	}
	return nil
}
