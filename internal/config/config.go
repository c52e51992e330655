// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads the configuration of the layerx command from
// defaults, an optional config file, and LAYERX_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gogama/layerx"
)

// Limiter backends.
const (
	LimiterMemory      = "memory"
	LimiterRedis       = "redis"
	LimiterTokenBucket = "token_bucket"
)

// Stats backends.
const (
	StatsNone   = "none"
	StatsMemory = "memory"
	StatsRedis  = "redis"
)

// Config represents the complete configuration of the layerx command.
type Config struct {
	Pipeline  layerx.Config   `mapstructure:"pipeline"`
	Transport TransportConfig `mapstructure:"transport"`
	Limiter   LimiterConfig   `mapstructure:"limiter"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// TransportConfig configures the HTTP transport under the pipeline.
type TransportConfig struct {
	MaxInFlight int  `mapstructure:"max_in_flight"`
	HTTP2       bool `mapstructure:"http2"`
}

// LimiterConfig selects the rate limiter backend.
type LimiterConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
}

// RedisConfig contains the Redis connection used by the redis limiter
// and stats backends.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StatsConfig selects where call outcomes are counted.
type StatsConfig struct {
	Backend string        `mapstructure:"backend"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig configures the command's zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// NeedsRedis reports whether any configured backend uses Redis.
func (c *Config) NeedsRedis() bool {
	return c.Limiter.Backend == LimiterRedis || c.Stats.Backend == StatsRedis
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if c.Transport.MaxInFlight < 0 {
		return fmt.Errorf("transport.max_in_flight must not be negative, got %d", c.Transport.MaxInFlight)
	}
	switch c.Limiter.Backend {
	case LimiterMemory, LimiterRedis, LimiterTokenBucket:
	default:
		return fmt.Errorf("limiter.backend must be one of %s, %s, %s; got %q",
			LimiterMemory, LimiterRedis, LimiterTokenBucket, c.Limiter.Backend)
	}
	switch c.Stats.Backend {
	case StatsNone, StatsMemory, StatsRedis:
	default:
		return fmt.Errorf("stats.backend must be one of %s, %s, %s; got %q",
			StatsNone, StatsMemory, StatsRedis, c.Stats.Backend)
	}
	if c.NeedsRedis() && strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required by the redis backends")
	}
	if c.Limiter.Backend == LimiterRedis && strings.TrimSpace(c.Limiter.Key) == "" {
		return fmt.Errorf("limiter.key is required by the redis limiter")
	}
	return nil
}
