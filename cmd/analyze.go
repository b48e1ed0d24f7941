// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"doclens/internal/core"
	"doclens/internal/formatters"
	"doclens/internal/parallel"
)

type analyzeOptions struct {
	format    string
	output    string
	ocr       bool
	threshold float64
	checks    string
	workers   int
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Analyze documents and print a report",
		Example: `  doclens analyze contract.pdf
  doclens analyze --checks legal,compliance --format json reports/*.docx
  doclens analyze --profile financial-focus --format xlsx --output q3.xlsx q3.pdf`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("analyze requires at least one file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.load(cmd)
			if err != nil {
				return err
			}
			return runAnalyze(cmd, a, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(formatters.List(), ", ")+" (default from config: text)")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	f.BoolVar(&opts.ocr, "ocr", true, "OCR PDF pages without a text layer")
	f.Float64Var(&opts.threshold, "threshold", 0.5, "confidence threshold for entities and semantic matches (0-1)")
	f.StringVar(&opts.checks, "checks", "", "checks to run: all, financial, legal, compliance, or a comma-separated list")
	f.IntVarP(&opts.workers, "workers", "w", 0, "documents analyzed concurrently (default from config)")
	return cmd
}

// settings merges explicitly set flags over the configuration defaults.
func (o *analyzeOptions) settings(cmd *cobra.Command, a *app) (analyzeOptions, error) {
	s := analyzeOptions{
		format:    a.cfg.Defaults.Format,
		output:    o.output,
		ocr:       a.cfg.Defaults.EnableOCR,
		threshold: a.cfg.Defaults.ConfidenceThreshold,
		checks:    a.cfg.Defaults.Checks,
		workers:   a.cfg.Defaults.Workers,
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		s.format = strings.ToLower(o.format)
	}
	if flags.Changed("ocr") {
		s.ocr = o.ocr
	}
	if flags.Changed("threshold") {
		s.threshold = o.threshold
	}
	if flags.Changed("checks") {
		s.checks = o.checks
	}
	if flags.Changed("workers") {
		s.workers = o.workers
	}

	if s.format == "" {
		s.format = formatters.DefaultFormat
	}
	if _, ok := formatters.Get(s.format); !ok {
		return s, usagef("unsupported format %q (available: %s)", s.format, strings.Join(formatters.List(), ", "))
	}
	if s.threshold < 0 || s.threshold > 1 {
		return s, usagef("--threshold must be between 0 and 1, got %g", s.threshold)
	}
	if _, err := core.ParseChecksToRun([]string{s.checks}); err != nil {
		return s, &usageError{err: err}
	}
	if s.workers < 1 {
		s.workers = parallel.DefaultWorkers()
	}
	if s.workers > len(cmd.Flags().Args()) && len(cmd.Flags().Args()) > 0 {
		s.workers = len(cmd.Flags().Args())
	}
	return s, nil
}

func runAnalyze(cmd *cobra.Command, a *app, opts *analyzeOptions, files []string) error {
	s, err := opts.settings(cmd, a)
	if err != nil {
		return err
	}
	if s.format == "xlsx" && s.output == "" && isTerminal(cmd.OutOrStdout()) {
		return usagef("xlsx output is binary; use --output to write it to a file")
	}

	ctx := cmd.Context()
	analyzer, err := core.NewAnalyzerFromConfig(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	observer := a.observer(cmd)
	if observer != nil {
		analyzer.SetObserver(observer)
	}

	pool := parallel.NewWorkerPool[*core.Report](s.workers, func(ctx context.Context, job parallel.Job) (*core.Report, error) {
		data, err := os.ReadFile(filepath.Clean(job.Path))
		if err != nil {
			return nil, err
		}
		return analyzer.Analyze(ctx, core.Request{
			Filename:  job.Path,
			Data:      data,
			OCR:       s.ocr,
			Threshold: s.threshold,
			Checks:    []string{s.checks},
		})
	})
	if observer != nil {
		pool.SetObserver(observer)
	}

	var progress parallel.ProgressCallback
	if len(files) > 1 && !a.quiet && !a.debug && isTerminal(cmd.ErrOrStderr()) {
		bar := newProgressBar(cmd.ErrOrStderr(), len(files))
		defer bar.Finish()
		progress = bar.Update
	}

	results, stats := pool.Process(ctx, parallel.NewJobs(files), progress)

	reports := make([]*core.Report, 0, len(results))
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			a.logger.Error().Err(res.Err).Str("file", res.Job.Path).Msg("analysis failed")
			continue
		}
		for _, w := range res.Value.Warnings {
			a.logger.Warn().Str("file", res.Job.Path).Msg(w)
		}
		reports = append(reports, res.Value)
	}

	a.logger.Debug().
		Int("files", stats.TotalFiles).
		Int("processed", stats.ProcessedFiles).
		Int("failed", stats.FailedFiles).
		Int("workers", stats.WorkerCount).
		Dur("avg_file_time", stats.AvgFileTime).
		Dur("total", stats.TotalDuration).
		Msg("analysis complete")

	if len(reports) > 0 {
		content, err := formatters.Export(s.format, reports, formatters.FormatterOptions{
			Verbose: a.verbose,
			NoColor: a.noColor || s.output != "",
		})
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), s.output, content); err != nil {
			return err
		}
		if s.output != "" && !a.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", s.output)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}

// writeOutput writes to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, content []byte) error {
	if path == "" {
		_, err := w.Write(content)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
