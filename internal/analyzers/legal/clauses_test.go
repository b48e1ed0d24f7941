// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package legal

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClausesNotFound(t *testing.T) {
	got := IdentifyRiskClauses("Nothing of legal interest.")

	for _, name := range []string{LimitationOfLiability, ForceMajeure} {
		f := got[name]
		assert.False(t, f.Found, name)
		assert.Equal(t, RiskHigh, f.RiskLevel, name)
		assert.Equal(t, "No "+name+" clause detected, which may present a risk.", f.Description)
		assert.Equal(t, "Consider adding a "+name+" clause to mitigate risk.", f.Recommendation)
		assert.Empty(t, f.MatchedPatterns)
	}

	ind := got[Indemnification]
	assert.False(t, ind.Found)
	assert.Equal(t, RiskNotAvailable, ind.RiskLevel)
	assert.Empty(t, ind.Description)
	assert.Empty(t, ind.Recommendation)
	assert.NotNil(t, ind.MatchedPatterns)
}

func TestIndemnificationRisk(t *testing.T) {
	high := IdentifyRiskClauses("Vendor will indemnify Client for unlimited losses.")[Indemnification]
	assert.True(t, high.Found)
	assert.Equal(t, RiskHigh, high.RiskLevel)
	assert.Equal(t, Recommendation(Indemnification, RiskHigh), high.Recommendation)

	low := IdentifyRiskClauses("The indemnifying party and indemnified party are both parties to a mutual promise.")[Indemnification]
	assert.Equal(t, RiskLow, low.RiskLevel)
	assert.Equal(t, "Found 3 instances of Indemnification language.", low.Description)
	assert.Len(t, low.Evidence, 3)
	assert.Equal(t, "Mutual indemnification provides balanced protection. No immediate action needed.", low.Recommendation)
}

func TestLimitationOfLiabilityLowCap(t *testing.T) {
	f := IdentifyRiskClauses("Liability shall not exceed the fees; damages are limited to an amount equal to $5000.")[LimitationOfLiability]
	assert.True(t, f.Found)
	assert.Equal(t, RiskHigh, f.RiskLevel)
	assert.Equal(t, "Found 1 instances of Limitation of Liability language.", f.Description)
}

func TestLimitationOfLiabilityReasonableCap(t *testing.T) {
	f := IdentifyRiskClauses("The maximum liability of either side is capped at the fees paid.")[LimitationOfLiability]
	assert.Equal(t, RiskLow, f.RiskLevel)
}

func TestTerminationForCause(t *testing.T) {
	f := IdentifyRiskClauses("Customer has the right to terminate for cause on notice.")[Termination]
	assert.True(t, f.Found)
	assert.Equal(t, RiskMedium, f.RiskLevel)
	assert.Equal(t, "Ensure termination for cause definitions are clear and reasonable.", f.Recommendation)
}

func TestCategoriesWithoutRulesDefaultToMedium(t *testing.T) {
	f := IdentifyRiskClauses("Confidential information must be protected.")[Confidentiality]
	assert.True(t, f.Found)
	assert.Equal(t, RiskMedium, f.RiskLevel)
	assert.Equal(t, Recommendation(Confidentiality, RiskMedium), f.Recommendation)
}

func TestMatchedPatternsRepeatPerMatch(t *testing.T) {
	f := IdentifyRiskClauses("Payment is net 30. Later invoices are net 45.")[PaymentTerms]
	assert.Equal(t, []string{`(net \d+|payment schedule|payment obligation)`, `(net \d+|payment schedule|payment obligation)`},
		f.MatchedPatterns)
}

func TestRecommendationFallback(t *testing.T) {
	assert.Equal(t,
		"Review the Custom clause and consider consulting with legal counsel regarding the high risk level.",
		Recommendation("Custom", RiskHigh))
}

func TestContextWindow(t *testing.T) {
	text := strings.Repeat("a", 150) + "indemnify" + strings.Repeat("b", 150)
	f := IdentifyRiskClauses(text)[Indemnification]
	assert.Equal(t, strings.Repeat("a", 100)+"indemnify"+strings.Repeat("b", 100), f.Evidence[0])

	wide := strings.Repeat("é", 120) + "X" + strings.Repeat("ü", 120)
	start := strings.Index(wide, "X")
	got := contextWindow(wide, start, start+1, 100)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 201, utf8.RuneCountInString(got))
}

func TestCategoriesOrder(t *testing.T) {
	assert.Equal(t, []string{
		Indemnification, LimitationOfLiability, Termination, IntellectualProperty,
		Confidentiality, GoverningLaw, ForceMajeure, PaymentTerms,
	}, Categories())
}
