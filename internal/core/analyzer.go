// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core runs the document loader and the analyzers for one upload.
// It is shared by the CLI and the web server.
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/analyzers/financial"
	"doclens/internal/analyzers/legal"
	"doclens/internal/document"
	"doclens/internal/insights"
	"doclens/internal/observability"
	"doclens/internal/preprocessors"
)

// ErrInvalidThreshold is returned when the confidence threshold is outside [0, 1].
var ErrInvalidThreshold = errors.New("confidence threshold must be between 0 and 1")

// Request describes one document to analyze.
type Request struct {
	Filename  string
	Data      []byte
	OCR       bool
	Threshold float64
	Checks    []string
}

// Report is the combined analysis of one document. Sections that were not
// requested are nil. A requested section that failed is nil and has an entry
// in Errors keyed by check name.
type Report struct {
	ID         string             `json:"id" yaml:"id"`
	Filename   string             `json:"filename" yaml:"filename"`
	Format     document.Format    `json:"format" yaml:"format"`
	Characters int                `json:"characters" yaml:"characters"`
	Tables     int                `json:"tables" yaml:"tables"`
	Pages      int                `json:"pages,omitempty" yaml:"pages,omitempty"`
	OCRPages   []int              `json:"ocr_pages,omitempty" yaml:"ocr_pages,omitempty"`
	Warnings   []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors     map[string]string  `json:"errors,omitempty" yaml:"errors,omitempty"`
	Financial  *financial.Result  `json:"financial,omitempty" yaml:"financial,omitempty"`
	Legal      *legal.Result      `json:"legal,omitempty" yaml:"legal,omitempty"`
	Compliance *compliance.Result `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Insights   *insights.Result   `json:"insights,omitempty" yaml:"insights,omitempty"`
	Duration   time.Duration      `json:"-" yaml:"-"`
}

// DocumentLoader extracts a document from raw bytes.
type DocumentLoader interface {
	Load(ctx context.Context, data []byte, filename string, opts preprocessors.LoadOptions) (*document.Document, error)
}

// Analyzer wires the loader to the analyzers.
type Analyzer struct {
	loader     DocumentLoader
	financial  *financial.Analyzer
	legal      *legal.Analyzer
	compliance *compliance.Checker
	observer   *observability.StandardObserver
	logger     zerolog.Logger
	closers    []func() error
}

// NewAnalyzer assembles an analyzer from its parts.
func NewAnalyzer(loader DocumentLoader, legalAnalyzer *legal.Analyzer, checker *compliance.Checker, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		loader:     loader,
		financial:  financial.NewAnalyzer(),
		legal:      legalAnalyzer,
		compliance: checker,
		logger:     observability.Component(logger, "analyzer"),
	}
}

// SetObserver sets the observability component
func (a *Analyzer) SetObserver(observer *observability.StandardObserver) {
	a.observer = observer
	if l, ok := a.loader.(interface {
		SetObserver(*observability.StandardObserver)
	}); ok {
		l.SetObserver(observer)
	}
}

// Close releases resources such as the embedding cache connection.
func (a *Analyzer) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Extract loads a document without analyzing it.
func (a *Analyzer) Extract(ctx context.Context, filename string, data []byte, ocr bool) (*document.Document, error) {
	return a.loader.Load(ctx, data, filename, preprocessors.LoadOptions{OCR: ocr})
}

// Analyze loads the document and runs the requested analyzers concurrently.
// Insights are derived once the other analyzers finish.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	if req.Threshold < 0 || req.Threshold > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidThreshold, req.Threshold)
	}
	enabled, err := ParseChecksToRun(req.Checks)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var finishTiming func(bool, map[string]interface{})
	if a.observer != nil {
		finishTiming = a.observer.StartTiming("analyzer", "analyze", req.Filename)
	}

	report, err := a.analyze(ctx, req, enabled)

	if finishTiming != nil {
		metadata := map[string]interface{}{"checks": req.Checks}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, req Request, enabled map[string]bool) (*Report, error) {
	doc, err := a.loader.Load(ctx, req.Data, req.Filename, preprocessors.LoadOptions{OCR: req.OCR})
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:         uuid.NewString(),
		Filename:   req.Filename,
		Format:     doc.Format,
		Characters: utf8.RuneCountInString(doc.Text),
		Tables:     len(doc.Tables),
		Pages:      doc.Pages,
		OCRPages:   doc.OCRPages,
		Warnings:   doc.Warnings,
	}
	for _, w := range doc.Warnings {
		a.logger.Warn().Str("file", req.Filename).Msg(w)
	}

	// Sections share the caller's ctx; one failing must not cancel the others.
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed = make(map[string]error)
	)
	fail := func(check string, err error) {
		mu.Lock()
		failed[check] = err
		mu.Unlock()
	}
	if enabled[CheckFinancial] {
		g.Go(func() error {
			report.Financial = a.financial.Analyze(doc.Text, doc.Tables)
			return nil
		})
	}
	if enabled[CheckLegal] {
		g.Go(func() error {
			res, err := a.legal.Analyze(ctx, doc.Text, req.Threshold)
			if err != nil {
				fail(CheckLegal, fmt.Errorf("legal analysis: %w", err))
				return nil
			}
			report.Legal = res
			return nil
		})
	}
	if enabled[CheckCompliance] {
		g.Go(func() error {
			res, err := a.compliance.Check(ctx, doc.Text, req.Threshold)
			if err != nil {
				fail(CheckCompliance, fmt.Errorf("compliance check: %w", err))
				return nil
			}
			report.Compliance = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		if len(failed) == countEnabled(enabled) {
			return nil, joinFailures(failed)
		}
		report.Errors = make(map[string]string, len(failed))
		for check, err := range failed {
			report.Errors[check] = err.Error()
			a.logger.Warn().Err(err).Str("file", req.Filename).Str("check", check).Msg("analysis section failed")
		}
	}

	report.Insights = insights.Analyze(doc.Text, report.Legal)

	a.logger.Debug().
		Str("id", report.ID).
		Str("file", req.Filename).
		Int("characters", report.Characters).
		Int("tables", report.Tables).
		Msg("analysis complete")
	return report, nil
}

func countEnabled(enabled map[string]bool) int {
	n := 0
	for _, on := range enabled {
		if on {
			n++
		}
	}
	return n
}

// joinFailures combines section errors in check-name order.
func joinFailures(failed map[string]error) error {
	checks := make([]string, 0, len(failed))
	for check := range failed {
		checks = append(checks, check)
	}
	sort.Strings(checks)
	errs := make([]error, 0, len(checks))
	for _, check := range checks {
		errs = append(errs, failed[check])
	}
	return errors.Join(errs...)
}
