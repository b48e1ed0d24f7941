// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package financial extracts headline metrics, ratios and period trends
// from financial report text and tables.
package financial

import (
	"maps"

	"doclens/internal/document"
)

// Source records where a metric value was found.
type Source string

const (
	SourceText  Source = "text"
	SourceTable Source = "table"
)

// MetricRecord is one extracted metric.
type MetricRecord struct {
	Name           string `json:"name" yaml:"name"`
	RawValue       string `json:"raw_value" yaml:"raw_value"`
	FormattedValue string `json:"formatted_value" yaml:"formatted_value"`
	Source         Source `json:"source" yaml:"source"`
}

// Result is the financial analysis of one document. Metrics holds the
// extracted values merged with the derived ratios; absent keys were not found.
type Result struct {
	Metrics map[string]string            `json:"metrics" yaml:"metrics"`
	Records map[string]MetricRecord      `json:"records,omitempty" yaml:"records,omitempty"`
	Ratios  map[string]string            `json:"ratios,omitempty" yaml:"ratios,omitempty"`
	Trends  map[string]map[string]string `json:"trends" yaml:"trends"`
}

// Analyzer is stateless and safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer returns a financial analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Analyze never fails; anything not found is omitted.
func (a *Analyzer) Analyze(text string, tables []document.Table) *Result {
	records := ExtractMetrics(text)
	// table values take precedence over text values
	maps.Copy(records, ExtractTableMetrics(tables))

	metrics := make(map[string]string, len(records)+len(ratioDefinitions))
	for name, rec := range records {
		metrics[name] = rec.FormattedValue
	}

	ratios := CalculateRatios(metrics)
	maps.Copy(metrics, ratios)

	return &Result{
		Metrics: metrics,
		Records: records,
		Ratios:  ratios,
		Trends:  ExtractTrends(text, tables),
	}
}
