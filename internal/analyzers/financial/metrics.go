// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package financial

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Metric names.
const (
	Revenue            = "Revenue"
	NetIncome          = "Net Income"
	TotalAssets        = "Total Assets"
	TotalLiabilities   = "Total Liabilities"
	EBITDA             = "EBITDA"
	EPS                = "EPS"
	GrossProfit        = "Gross Profit"
	OperatingIncome    = "Operating Income"
	CurrentAssets      = "Current Assets"
	CurrentLiabilities = "Current Liabilities"
)

const scaleSuffix = `\s*(?:million|billion|M|B)?`

type metricPattern struct {
	name    string
	pattern string
	re      *regexp.Regexp
}

func newMetricPattern(name, pattern string) metricPattern {
	return metricPattern{name: name, pattern: pattern, re: regexp.MustCompile(`(?i)` + pattern)}
}

// primaryMetrics are searched in text, tables and trends, in this order.
var primaryMetrics = []metricPattern{
	newMetricPattern(Revenue, `(?:Annual|Total|Net)?\s*Revenue\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
	newMetricPattern(NetIncome, `(?:Net Income|Net Profit|Net Earnings)\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
	newMetricPattern(TotalAssets, `Total Assets\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
	newMetricPattern(TotalLiabilities, `Total Liabilities\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
	newMetricPattern(EBITDA, `EBITDA\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
	newMetricPattern(EPS, `(?:Earnings Per Share|EPS)\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`),
	newMetricPattern(GrossProfit, `Gross Profit\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
	newMetricPattern(OperatingIncome, `Operating Income\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`+scaleSuffix),
}

// balanceSheetMetrics only feed the current ratio.
var balanceSheetMetrics = []metricPattern{
	newMetricPattern(CurrentAssets, `Current Assets\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`),
	newMetricPattern(CurrentLiabilities, `Current Liabilities\s*(?:of|:)?\s*[\$]?([0-9,\.]+)`),
}

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// ExtractMetrics applies every metric pattern to text and keeps the first
// match of each.
func ExtractMetrics(text string) map[string]MetricRecord {
	out := make(map[string]MetricRecord)

	for _, m := range primaryMetrics {
		match := m.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		raw := strings.ReplaceAll(match[1], ",", "")
		formatted, ok := FormatCurrency(raw)
		if !ok {
			formatted = raw
		}
		out[m.name] = MetricRecord{Name: m.name, RawValue: match[1], FormattedValue: formatted, Source: SourceText}
	}

	for _, m := range balanceSheetMetrics {
		if match := m.re.FindStringSubmatch(text); match != nil {
			out[m.name] = MetricRecord{Name: m.name, RawValue: match[1], FormattedValue: CleanValue(match[1]), Source: SourceText}
		}
	}

	return out
}

// CleanValue keeps only digits and dots, then formats the result as
// currency. Unparsable input is returned in its cleaned form.
func CleanValue(s string) string {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if formatted, ok := FormatCurrency(cleaned); ok {
		return formatted
	}
	return cleaned
}

// FormatCurrency renders a plain decimal string as "$1,234.50".
func FormatCurrency(s string) (string, bool) {
	d, ok := parseAmount(s)
	if !ok {
		return "", false
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("$%v", number.Decimal(d.InexactFloat64(), number.MinFractionDigits(2), number.MaxFractionDigits(2))), true
}

// parseAmount accepts digits with at most one dot.
func parseAmount(s string) (decimal.Decimal, bool) {
	if s == "" || s == "." || strings.Count(s, ".") > 1 {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
