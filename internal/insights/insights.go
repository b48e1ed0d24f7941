// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package insights derives summary views from a document and its legal analysis.
package insights

import (
	"sort"
	"strings"
	"unicode"

	"doclens/internal/analyzers/legal"
)

// MaxKeyTerms bounds the key term list.
const MaxKeyTerms = 20

// TermCount is a word and its frequency.
type TermCount struct {
	Term  string `json:"term" yaml:"term"`
	Count int    `json:"count" yaml:"count"`
}

// PartyLink connects two contract parties.
type PartyLink struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Result holds the derived views.
type Result struct {
	KeyTerms   []TermCount    `json:"key_terms" yaml:"key_terms"`
	RiskScores map[string]int `json:"risk_scores,omitempty" yaml:"risk_scores,omitempty"`
	PartyLinks []PartyLink    `json:"party_links,omitempty" yaml:"party_links,omitempty"`
}

var riskScore = map[legal.RiskLevel]int{
	legal.RiskLow:    1,
	legal.RiskMedium: 2,
	legal.RiskHigh:   3,
}

// Analyze computes key terms from text and, when legal results are given,
// the clause risk scores and party links.
func Analyze(text string, lr *legal.Result) *Result {
	res := &Result{KeyTerms: KeyTerms(text, MaxKeyTerms)}
	if lr == nil {
		return res
	}
	res.RiskScores = RiskScores(lr.RiskClauses)
	res.PartyLinks = PartyLinks(lr.ContractInfo.Parties)
	return res
}

// KeyTerms returns the n most frequent lower-cased alphabetic words that are
// not stop words. Ties are ordered alphabetically.
func KeyTerms(text string, n int) []TermCount {
	counts := make(map[string]int)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if !isAlpha(w) {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
	}

	terms := make([]TermCount, 0, len(counts))
	for w, c := range counts {
		terms = append(terms, TermCount{Term: w, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

func isAlpha(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return w != ""
}

// RiskScores maps each clause category to 0 (not found) through 3 (high).
func RiskScores(clauses map[string]legal.ClauseFinding) map[string]int {
	scores := make(map[string]int, len(clauses))
	for name, f := range clauses {
		if !f.Found {
			scores[name] = 0
			continue
		}
		scores[name] = riskScore[f.RiskLevel]
	}
	return scores
}

// PartyLinks pairs every party with every later party.
func PartyLinks(parties []string) []PartyLink {
	if len(parties) < 2 {
		return nil
	}
	var links []PartyLink
	for i := range parties {
		for j := i + 1; j < len(parties); j++ {
			links = append(links, PartyLink{Source: parties[i], Target: parties[j]})
		}
	}
	return links
}
