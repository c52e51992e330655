// Copyright 2021 The layerx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gogama/layerx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// DefaultIPURL is the service queried by the ip command when no URL is
// given.
const DefaultIPURL = "http://httpbin.org/ip"

// origin is the body returned by DefaultIPURL.
type origin struct {
	Origin string `json:"origin"`
}

func newIPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ip [url]",
		Short: "Print the caller's public IP address as seen by httpbin",
		Long: `Fetch {"origin": "..."} from httpbin (or a compatible URL) through the
pipeline and print the origin address.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := DefaultIPURL
			if len(args) > 0 {
				url = args[0]
			}

			res, err := layerx.Get(cmd.Context(), a.rt.pipeline, url)
			if err != nil {
				return explain(err)
			}
			defer func() { _ = res.Body.Close() }()

			a.logger.Debug("response received",
				zap.String("status", res.Status),
				zap.Any("headers", res.Header))
			if res.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status %s from %s", res.Status, url)
			}

			var o origin
			if err := json.NewDecoder(res.Body).Decode(&o); err != nil {
				return fmt.Errorf("failed to decode response from %s: %w", url, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), o.Origin)
			return nil
		},
	}
}
