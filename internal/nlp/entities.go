// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package nlp

import (
	"context"
	"regexp"
	"sort"
)

// Entity labels used by the analyzers.
const (
	LabelOrg  = "ORG"
	LabelDate = "DATE"
)

// Entity is a recognized span of text.
type Entity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// EntityRecognizer finds organization and date entities in document order.
// Implementations must be safe for concurrent use.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
	Name() string
}

// Texts returns the text of entities with the given label and at least minScore, in order.
func Texts(entities []Entity, label string, minScore float64) []string {
	var out []string
	for _, e := range entities {
		if e.Label == label && e.Score >= minScore {
			out = append(out, e.Text)
		}
	}
	return out
}

const monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?`

var (
	orgPattern = regexp.MustCompile(
		`\b(?:[A-Z][\w&'\-]*[ \t]+){0,4}[A-Z][\w&'\-]*,?[ \t]+` +
			`(?:(?i:Incorporated|Limited|Corporation|Company|Holdings|Group|Partners|LLC|LLP|PLC|GmbH)\b|(?i:Inc|Ltd|Corp|Co)\b\.?)`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:the[ \t]+)?\d{1,2}(?:st|nd|rd|th)?[ \t]+day[ \t]+of[ \t]+` + monthNames + `,?[ \t]+\d{4}\b`),
		regexp.MustCompile(`\b` + monthNames + `[ \t]+\d{1,2}(?:st|nd|rd|th)?,?[ \t]+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}[ \t]+` + monthNames + `,?[ \t]+\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b` + monthNames + `[ \t]+\d{4}\b`),
	}
)

// RuleRecognizer is the offline recognizer: organizations are capitalized word runs
// ending in a corporate designator, dates are the common written and numeric forms.
type RuleRecognizer struct{}

// NewRuleRecognizer returns the rule-based recognizer.
func NewRuleRecognizer() *RuleRecognizer {
	return &RuleRecognizer{}
}

func (r *RuleRecognizer) Name() string { return "rules" }

// Recognize returns entities in document order. Overlapping candidates keep the earliest,
// then the longest, span.
func (r *RuleRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []Entity
	collect := func(re *regexp.Regexp, label string) {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, Entity{
				Text:  text[loc[0]:loc[1]],
				Label: label,
				Start: loc[0],
				End:   loc[1],
				Score: 1.0,
			})
		}
	}
	collect(orgPattern, LabelOrg)
	for _, re := range datePatterns {
		collect(re, LabelDate)
	}

	return resolveOverlaps(candidates), nil
}

func resolveOverlaps(candidates []Entity) []Entity {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End-candidates[i].Start > candidates[j].End-candidates[j].Start
	})

	out := make([]Entity, 0, len(candidates))
	lastEnd := -1
	for _, c := range candidates {
		if c.Start < lastEnd {
			continue
		}
		out = append(out, c)
		lastEnd = c.End
	}
	return out
}
