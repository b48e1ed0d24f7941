// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleRecognizer(t *testing.T) {
	text := "This Service Agreement is made on January 15, 2024 between Acme Widgets, Inc. " +
		"and Globex Corporation. Payment is due by 03/31/2024. Northwind Traders LLC " +
		"shall deliver by the 1st day of June, 2024."

	entities, err := NewRuleRecognizer().Recognize(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme Widgets, Inc.", "Globex Corporation", "Northwind Traders LLC"},
		Texts(entities, LabelOrg, 0))
	assert.Equal(t, []string{"January 15, 2024", "03/31/2024", "the 1st day of June, 2024"},
		Texts(entities, LabelDate, 0))

	for i := 1; i < len(entities); i++ {
		assert.LessOrEqual(t, entities[i-1].End, entities[i].Start, "entities are ordered and disjoint")
	}
}

func TestRuleRecognizerDateForms(t *testing.T) {
	entities, err := NewRuleRecognizer().Recognize(context.Background(),
		"Effective 2024-02-01, renewed 5 March 2025 and reviewed in Sept 2026.")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-01", "5 March 2025", "Sept 2026"}, Texts(entities, LabelDate, 0))
}

func TestRuleRecognizerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRuleRecognizer().Recognize(ctx, "Acme Inc.")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextsFiltersByScore(t *testing.T) {
	entities := []Entity{
		{Text: "Acme Corp", Label: LabelOrg, Score: 0.95},
		{Text: "Maybe Co", Label: LabelOrg, Score: 0.30},
		{Text: "2024", Label: LabelDate, Score: 0.99},
	}
	assert.Equal(t, []string{"Acme Corp"}, Texts(entities, LabelOrg, 0.5))
	assert.Equal(t, []string{"Acme Corp", "Maybe Co"}, Texts(entities, LabelOrg, 0))
}
