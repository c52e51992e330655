// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package layerx

import (
	"fmt"
	"time"
)

const (
	// DefaultTimeout is the per-call timeout used when Config.Timeout
	// is zero.
	DefaultTimeout = 500 * time.Second
	// DefaultRateLimitCapacity is the number of calls admitted per
	// window when Config.RateLimitCapacity is zero.
	DefaultRateLimitCapacity = 100
	// DefaultRateLimitWindow is the rate-limit window used when
	// Config.RateLimitWindow is zero.
	DefaultRateLimitWindow = 100 * time.Millisecond
)

// Config holds the construction parameters of a Pipeline.
//
// The zero value is usable: every zero field is replaced by its
// default.
type Config struct {
	// Timeout is the time a call may spend in the inner service before
	// it fails with a timeout error.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimitCapacity is the number of calls admitted per window.
	RateLimitCapacity int `mapstructure:"rate_limit_capacity"`
	// RateLimitWindow is the length of a rate-limit window.
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		Timeout:           DefaultTimeout,
		RateLimitCapacity: DefaultRateLimitCapacity,
		RateLimitWindow:   DefaultRateLimitWindow,
	}
}

// Validate reports an error if any field of cfg is negative.
func (cfg Config) Validate() error {
	if cfg.Timeout < 0 {
		return fmt.Errorf("layerx: negative timeout %s", cfg.Timeout)
	}
	if cfg.RateLimitCapacity < 0 {
		return fmt.Errorf("layerx: negative rate limit capacity %d", cfg.RateLimitCapacity)
	}
	if cfg.RateLimitWindow < 0 {
		return fmt.Errorf("layerx: negative rate limit window %s", cfg.RateLimitWindow)
	}
	return nil
}

func (cfg Config) withDefaults() Config {
	d := DefaultConfig()
	if cfg.Timeout == 0 {
		cfg.Timeout = d.Timeout
	}
	if cfg.RateLimitCapacity == 0 {
		cfg.RateLimitCapacity = d.RateLimitCapacity
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = d.RateLimitWindow
	}
	return cfg
}
