// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package financial

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RatioStyle selects how a ratio is rendered.
type RatioStyle int

const (
	StyleDecimal RatioStyle = iota // "0.42"
	StylePercent                   // "42.00%"
)

// Ratio is numerator / denominator over two metric names.
type Ratio struct {
	Name        string
	Numerator   string
	Denominator string
	Style       RatioStyle
}

var ratioDefinitions = []Ratio{
	{Name: "Debt-to-Asset", Numerator: TotalLiabilities, Denominator: TotalAssets, Style: StyleDecimal},
	{Name: "Current Ratio", Numerator: CurrentAssets, Denominator: CurrentLiabilities, Style: StyleDecimal},
	{Name: "Profit Margin", Numerator: NetIncome, Denominator: Revenue, Style: StylePercent},
	{Name: "ROA", Numerator: NetIncome, Denominator: TotalAssets, Style: StylePercent},
}

// Ratios returns the fixed ratio set.
func Ratios() []Ratio {
	return append([]Ratio(nil), ratioDefinitions...)
}

// CalculateRatios evaluates every ratio whose inputs are present and numeric.
// A zero denominator skips the ratio.
func CalculateRatios(metrics map[string]string) map[string]string {
	out := make(map[string]string)
	for _, r := range ratioDefinitions {
		if v, ok := r.Evaluate(metrics); ok {
			out[r.Name] = v
		}
	}
	return out
}

// Evaluate computes the ratio from formatted metric values.
func (r Ratio) Evaluate(metrics map[string]string) (string, bool) {
	num, ok := metricAmount(metrics, r.Numerator)
	if !ok {
		return "", false
	}
	den, ok := metricAmount(metrics, r.Denominator)
	if !ok || den.IsZero() {
		return "", false
	}

	// ties round to even
	value := num.Div(den)
	if r.Style == StylePercent {
		return value.Mul(decimal.NewFromInt(100)).RoundBank(2).StringFixed(2) + "%", true
	}
	return value.RoundBank(2).StringFixed(2), true
}

func metricAmount(metrics map[string]string, name string) (decimal.Decimal, bool) {
	v, ok := metrics[name]
	if !ok {
		return decimal.Decimal{}, false
	}
	return parseAmount(strings.NewReplacer("$", "", ",", "").Replace(v))
}
