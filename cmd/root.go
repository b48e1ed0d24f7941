// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"doclens/internal/config"
	"doclens/internal/observability"
	"doclens/internal/version"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configFile string
	profile    string
	debug      bool
	quiet      bool
	noColor    bool
	verbose    bool
}

// app is the resolved configuration for one command invocation.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	debug   bool
	quiet   bool
	verbose bool
	noColor bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "doclens",
		Short: "Analyze contracts and financial reports",
		Long: `doclens extracts text and tables from PDF, DOCX and TXT documents and reports
financial metrics, contract risk clauses, obligations and regulatory compliance.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(version.Info() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "path to configuration file (YAML)")
	pf.StringVar(&opts.profile, "profile", "", "analysis profile from the configuration file")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging and per-stage timing")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output and informational logs")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "include clause evidence and best-matching sentences")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newExtractCmd(opts),
		newServeCmd(opts),
		newFormatsCmd(),
		newProfilesCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration in order: defaults, config file, environment, profile.
func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	var (
		cfg       *config.Config
		searchErr error
		err       error
	)
	if o.configFile != "" {
		if cfg, err = config.LoadConfig(o.configFile); err != nil {
			return nil, err
		}
	} else {
		cfg, searchErr = config.LoadConfigOrDefault("")
	}

	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if o.profile != "" {
		if err := cfg.ApplyProfile(o.profile); err != nil {
			return nil, &usageError{err: err}
		}
	}

	level := cfg.Logging.Level
	switch {
	case o.debug || cfg.Defaults.Debug:
		level = "debug"
	case o.quiet:
		level = "error"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if searchErr != nil {
		logger.Warn().Err(searchErr).Msg("ignoring configuration file, using defaults")
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		debug:   o.debug || cfg.Defaults.Debug,
		quiet:   o.quiet,
		verbose: o.verbose || cfg.Defaults.Verbose,
		noColor: o.noColor || cfg.Defaults.NoColor,
	}
	if a.noColor {
		color.NoColor = true
	}
	return a, nil
}

// observer returns a step-tracing observer when --debug is set.
func (a *app) observer(cmd *cobra.Command) *observability.StandardObserver {
	if !a.debug {
		return nil
	}
	return observability.NewDebugObserver(cmd.ErrOrStderr(), a.logger).StandardObserver
}
