// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gogama/layerx"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the loader
// reads. The key pipeline.timeout, for example, is read from
// LAYERX_PIPELINE_TIMEOUT.
const EnvPrefix = "LAYERX"

// SetDefaults registers the default value of every configuration key
// in v. Every key must have a default for environment variables to be
// picked up.
func SetDefaults(v *viper.Viper) {
	d := layerx.DefaultConfig()
	v.SetDefault("pipeline.timeout", d.Timeout.String())
	v.SetDefault("pipeline.rate_limit_capacity", d.RateLimitCapacity)
	v.SetDefault("pipeline.rate_limit_window", d.RateLimitWindow.String())

	v.SetDefault("transport.max_in_flight", 0)
	v.SetDefault("transport.http2", true)

	v.SetDefault("limiter.backend", LimiterMemory)
	v.SetDefault("limiter.key", "layerx:ratelimit")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("stats.backend", StatsNone)
	v.SetDefault("stats.prefix", "layerx:stats")
	v.SetDefault("stats.ttl", "24h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// Load builds a Config from v.
//
// Values are taken, from highest to lowest precedence, from flags bound
// to v, LAYERX_ environment variables, the config file (if file is not
// empty), and the defaults. A missing config file is an error only if
// it was named explicitly.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file not found: %w", err)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Limiter.Backend = strings.ToLower(strings.TrimSpace(cfg.Limiter.Backend))
	cfg.Stats.Backend = strings.ToLower(strings.TrimSpace(cfg.Stats.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
