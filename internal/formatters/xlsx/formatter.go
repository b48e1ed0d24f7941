// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/core"
	"doclens/internal/formatters"
	"doclens/internal/formatters/shared"
)

// Sheet names.
const (
	SheetSummary    = "Summary"
	SheetMetrics    = "Metrics"
	SheetTrends     = "Trends"
	SheetClauses    = "Clauses"
	SheetCompliance = "Compliance"
)

var sheetHeaders = map[string][]string{
	SheetSummary:    {"File", "Format", "Characters", "Tables", "Pages", "Overall Compliant", "Warnings", "Errors"},
	SheetMetrics:    {"File", "Metric", "Value", "Source"},
	SheetTrends:     {"File", "Metric", "Period", "Value"},
	SheetClauses:    {"File", "Category", "Found", "Risk Level", "Description", "Recommendation"},
	SheetCompliance: {"File", "Category", "Requirement", "Status", "Confidence", "Matched By", "Recommendation"},
}

var sheetOrder = []string{SheetSummary, SheetMetrics, SheetTrends, SheetClauses, SheetCompliance}

// Formatter writes an Excel workbook with one sheet per analysis section.
type Formatter struct{}

// NewFormatter creates a new XLSX formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "xlsx"
}

func (f *Formatter) Description() string {
	return "Excel workbook with metrics, trends, clauses and compliance sheets"
}

func (f *Formatter) FileExtension() string {
	return ".xlsx"
}

// sheetWriter appends rows to one sheet.
type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
}

func (s *sheetWriter) write(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.file.SetSheetRow(s.sheet, cell, &values)
}

func (f *Formatter) Format(reports []*core.Report, options formatters.FormatterOptions) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	sheets := make(map[string]*sheetWriter, len(sheetOrder))
	for _, name := range sheetOrder {
		if name != SheetSummary {
			if _, err := file.NewSheet(name); err != nil {
				return nil, fmt.Errorf("xlsx sheet %s: %w", name, err)
			}
		}
		w := &sheetWriter{file: file, sheet: name}
		header := make([]any, len(sheetHeaders[name]))
		for i, h := range sheetHeaders[name] {
			header[i] = h
		}
		if err := w.write(header...); err != nil {
			return nil, fmt.Errorf("xlsx header %s: %w", name, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = file.SetCellStyle(name, "A1", last, bold)
		sheets[name] = w
	}

	for _, r := range reports {
		if err := writeReport(sheets, r); err != nil {
			return nil, fmt.Errorf("xlsx rows: %w", err)
		}
	}

	_ = file.SetColWidth(SheetSummary, "A", "A", 30)
	_ = file.SetColWidth(SheetMetrics, "A", "B", 24)
	_ = file.SetColWidth(SheetClauses, "B", "B", 24)
	_ = file.SetColWidth(SheetClauses, "E", "F", 60)
	_ = file.SetColWidth(SheetCompliance, "B", "C", 36)
	_ = file.SetColWidth(SheetCompliance, "G", "G", 60)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeReport(sheets map[string]*sheetWriter, r *core.Report) error {
	overall := ""
	if r.Compliance != nil {
		overall = fmt.Sprintf("%t", r.Compliance.OverallCompliant)
	}
	if err := sheets[SheetSummary].write(r.Filename, string(r.Format), r.Characters, r.Tables, r.Pages, overall, strings.Join(r.Warnings, "\n"), joinErrors(r.Errors)); err != nil {
		return err
	}

	if fin := r.Financial; fin != nil {
		for _, name := range shared.SortedKeys(fin.Metrics) {
			source := "derived"
			if rec, ok := fin.Records[name]; ok {
				source = string(rec.Source)
			}
			if err := sheets[SheetMetrics].write(r.Filename, name, fin.Metrics[name], source); err != nil {
				return err
			}
		}
		for _, metric := range shared.SortedKeys(fin.Trends) {
			for _, period := range shared.SortedKeys(fin.Trends[metric]) {
				if err := sheets[SheetTrends].write(r.Filename, metric, period, fin.Trends[metric][period]); err != nil {
					return err
				}
			}
		}
	}

	if l := r.Legal; l != nil {
		for _, name := range shared.ClauseOrder(l.RiskClauses) {
			c := l.RiskClauses[name]
			if err := sheets[SheetClauses].write(r.Filename, name, c.Found, string(c.RiskLevel), c.Description, c.Recommendation); err != nil {
				return err
			}
		}
	}

	if c := r.Compliance; c != nil {
		for _, category := range compliance.Categories() {
			for _, check := range c.Checks[category] {
				if err := sheets[SheetCompliance].write(r.Filename, category, check.Requirement,
					shared.ComplianceStatus(check), check.Confidence, check.MatchedBy, check.Recommendation); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}

func joinErrors(errs map[string]string) string {
	lines := make([]string, 0, len(errs))
	for _, check := range shared.SortedKeys(errs) {
		lines = append(lines, errs[check])
	}
	return strings.Join(lines, "\n")
}
