// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package financial

import (
	"regexp"
	"strings"

	"doclens/internal/document"
)

var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`FY\s?\d{4}`),
	regexp.MustCompile(`Q\d\s?\d{4}`),
	regexp.MustCompile(`(?:Jan|January|Feb|February|Mar|March|Apr|April|May|Jun|June|Jul|July|Aug|August|Sep|September|Oct|October|Nov|November|Dec|December)[a-z]*\s+\d{4}`),
}

// ExtractPeriods returns the reporting period labels found in text, in
// pattern order then document order, without duplicates.
func ExtractPeriods(text string) []string {
	var periods []string
	seen := make(map[string]bool)
	for _, re := range periodPatterns {
		for _, p := range re.FindAllString(text, -1) {
			if !seen[p] {
				seen[p] = true
				periods = append(periods, p)
			}
		}
	}
	return periods
}

// ExtractTrends maps metric -> period -> value. Text values come from a
// metric appearing after the period label on the same line; table values
// come from period header columns and overwrite text values.
func ExtractTrends(text string, tables []document.Table) map[string]map[string]string {
	trends := make(map[string]map[string]string)
	set := func(metric, period, value string) {
		if trends[metric] == nil {
			trends[metric] = make(map[string]string)
		}
		trends[metric][period] = value
	}

	periods := ExtractPeriods(text)

	for _, m := range primaryMetrics {
		for _, period := range periods {
			re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(period) + `.*?` + m.pattern)
			if err != nil {
				continue
			}
			if match := re.FindStringSubmatch(text); match != nil {
				set(m.name, period, CleanValue(match[1]))
			}
		}
	}

	for _, table := range tables {
		header := table.Header()
		type periodColumn struct {
			index  int
			period string
		}
		var columns []periodColumn
		for i, h := range header {
			h = strings.TrimSpace(h)
			for _, period := range periods {
				if strings.Contains(h, period) {
					columns = append(columns, periodColumn{i, period})
				}
			}
		}
		if len(columns) == 0 {
			continue
		}

		for _, row := range table.Rows {
			if len(row) == 0 {
				continue
			}
			label := strings.TrimSpace(row[0])
			for i, m := range primaryMetrics {
				if !metricLabels[i].MatchString(label) {
					continue
				}
				for _, col := range columns {
					if col.index >= len(row) {
						continue
					}
					value := strings.TrimSpace(row[col.index])
					if hasDigit.MatchString(value) {
						set(m.name, col.period, CleanValue(value))
					}
				}
			}
		}
	}

	return trends
}
