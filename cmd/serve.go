// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"doclens/internal/core"
	"doclens/internal/web"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  noArgs("serve"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			analyzer, err := core.NewAnalyzerFromConfig(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer analyzer.Close()
			if observer := a.observer(cmd); observer != nil {
				analyzer.SetObserver(observer)
			}

			return web.NewServer(a.cfg, analyzer, a.logger).Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: :8080)")
	return cmd
}
