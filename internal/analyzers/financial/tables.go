// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package financial

import (
	"regexp"
	"strings"

	"doclens/internal/document"
)

var financialIndicators = []string{
	"revenue", "income", "profit", "loss", "assets", "liabilities",
	"equity", "cash", "balance", "statement", "financial", "earnings",
}

var (
	hasDigit = regexp.MustCompile(`\d`)

	// metricLabels match a metric name anywhere in a row or label.
	metricLabels = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(primaryMetrics))
		for i, m := range primaryMetrics {
			out[i] = regexp.MustCompile(`(?i)` + m.name)
		}
		return out
	}()
)

// ExtractTableMetrics reads metric rows out of tables that look financial.
// For a matching row the value is the right-most digit-bearing cell other
// than the first. Later rows and tables overwrite earlier ones.
func ExtractTableMetrics(tables []document.Table) map[string]MetricRecord {
	out := make(map[string]MetricRecord)

	for _, table := range tables {
		if !IsFinancialTable(table) {
			continue
		}
		for _, row := range table.Rows {
			rowText := strings.Join(row, " ")
			for i, m := range primaryMetrics {
				if !metricLabels[i].MatchString(rowText) {
					continue
				}
				for c := len(row) - 1; c > 0; c-- {
					if hasDigit.MatchString(row[c]) {
						out[m.name] = MetricRecord{
							Name:           m.name,
							RawValue:       row[c],
							FormattedValue: CleanValue(row[c]),
							Source:         SourceTable,
						}
						break
					}
				}
			}
		}
	}

	return out
}

// IsFinancialTable reports whether the table mentions a financial term or
// more than 40% of its cells contain a digit.
func IsFinancialTable(table document.Table) bool {
	lower := strings.ToLower(table.String())
	for _, indicator := range financialIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	cells, numeric := 0, 0
	for _, row := range table.Rows {
		for _, cell := range row {
			cells++
			if hasDigit.MatchString(cell) {
				numeric++
			}
		}
	}
	return cells > 0 && float64(numeric)/float64(cells) > 0.4
}
