// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"doclens/internal/formatters"
	"doclens/internal/version"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats",
		Args:  noArgs("formats"),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, info := range formatters.GetSupportedFormats() {
				marker := " "
				if info.Name == formatters.DefaultFormat {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %-6s %-6s %s\n", marker, info.Name, info.Extension, info.Description)
			}
			return nil
		},
	}
}

func newProfilesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List analysis profiles from the configuration",
		Args:  noArgs("profiles"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range a.cfg.ListProfiles() {
				p := a.cfg.Profiles[name]
				fmt.Fprintf(out, "%-18s checks=%-12s %s\n", name, p.Checks, p.Description)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs("version"),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}

func noArgs(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return usagef("%s takes no arguments", name)
		}
		return nil
	}
}
