// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/gogama/layerx"
	"github.com/gogama/layerx/transient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGetCmd(a *app) *cobra.Command {
	var include bool
	var repeat int

	getCmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Send a GET request through the pipeline and print the response",
		Long: `Send a GET request through the pipeline and print the response body.

With --repeat, the request is sent several times in a row and one line is
printed per call, which shows the rate limiter at work.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if repeat > 1 {
				return a.repeatGet(cmd, out, args[0], repeat)
			}

			res, err := layerx.Get(cmd.Context(), a.rt.pipeline, args[0])
			if err != nil {
				return explain(err)
			}
			defer func() { _ = res.Body.Close() }()

			if include {
				fmt.Fprintf(out, "%s %s\n", res.Proto, res.Status)
				keys := make([]string, 0, len(res.Header))
				for k := range res.Header {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					for _, v := range res.Header[k] {
						fmt.Fprintf(out, "%s: %s\n", k, v)
					}
				}
				fmt.Fprintln(out)
			}
			_, err = io.Copy(out, res.Body)
			return err
		},
	}

	getCmd.Flags().BoolVarP(&include, "include", "i", false, "print the status line and headers")
	getCmd.Flags().IntVarP(&repeat, "repeat", "n", 1, "number of times to send the request")
	return getCmd
}

func (a *app) repeatGet(cmd *cobra.Command, out io.Writer, url string, n int) error {
	for i := 1; i <= n; i++ {
		res, err := layerx.Get(cmd.Context(), a.rt.pipeline, url)
		if err != nil {
			cat := transient.Categorize(err)
			a.logger.Debug("call failed", zap.Int("call", i), zap.Stringer("category", cat), zap.Error(err))
			if cat == transient.Not {
				return explain(err)
			}
			fmt.Fprintf(out, "%d %s\n", i, cat)
			continue
		}
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
		fmt.Fprintf(out, "%d %s\n", i, res.Status)
	}
	return nil
}

// explain annotates err with a hint about whether trying again later
// might help.
func explain(err error) error {
	switch transient.Categorize(err) {
	case transient.Shed:
		return fmt.Errorf("too many requests in flight, try again: %w", err)
	case transient.RateLimited:
		return fmt.Errorf("rate limit exhausted, try again shortly: %w", err)
	case transient.Timeout:
		return fmt.Errorf("request timed out, consider a longer --timeout: %w", err)
	case transient.ConnRefused, transient.ConnReset:
		return fmt.Errorf("connection failed, the server may be restarting: %w", err)
	default:
		return err
	}
}
