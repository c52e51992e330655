// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cmd implements the layerx command line.
package cmd

import (
	"errors"
	"syscall"

	"github.com/gogama/layerx/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
	rt     *runtime
}

// NewRootCmd returns the root layerx command with all subcommands
// attached.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "layerx",
		Short: "Send HTTP requests through a timeout, rate limit, and load shed pipeline",
		Long: `layerx sends HTTP requests through a pipeline which bounds their latency
and throughput and fails fast under overload.

Use the subcommands to perform specific operations.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setUp,
		PersistentPostRunE: a.tearDown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (optional)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.Duration("timeout", 0, "per-call timeout (default 500s)")
	flags.Int("rate-limit-capacity", 0, "calls admitted per rate limit window (default 100)")
	flags.Duration("rate-limit-window", 0, "rate limit window (default 100ms)")
	flags.Int("max-in-flight", 0, "maximum requests in flight, 0 for no limit")
	flags.String("limiter", "", "rate limiter backend: memory, redis, or token_bucket")
	flags.String("stats", "", "stats backend: none, memory, or redis")
	flags.String("redis-addr", "", "Redis address for the redis backends")

	bind := map[string]string{
		"pipeline.timeout":             "timeout",
		"pipeline.rate_limit_capacity": "rate-limit-capacity",
		"pipeline.rate_limit_window":   "rate-limit-window",
		"transport.max_in_flight":      "max-in-flight",
		"limiter.backend":              "limiter",
		"stats.backend":                "stats",
		"redis.addr":                   "redis-addr",
	}
	for key, name := range bind {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(newGetCmd(a), newIPCmd(a))
	return rootCmd
}

// Execute runs the root command against the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) setUp(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	if f := a.v.ConfigFileUsed(); f != "" {
		logger.Debug("using config file", zap.String("path", f))
	}

	rt, err := build(cfg, logger)
	if err != nil {
		return err
	}
	a.rt = rt
	return nil
}

func (a *app) tearDown(_ *cobra.Command, _ []string) error {
	var err error
	if a.rt != nil {
		a.rt.report()
		err = multierr.Append(err, a.rt.close())
	}
	if syncErr := a.logger.Sync(); syncErr != nil && !ignorableSyncError(syncErr) {
		err = multierr.Append(err, syncErr)
	}
	return err
}

func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	if cfg.Development || verbose {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// ignorableSyncError reports whether err is the error returned when
// syncing a logger attached to a terminal or pipe.
func ignorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
