// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package compliance checks documents against a fixed catalog of regulatory
// requirements, first by phrase and then by sentence similarity.
package compliance

import (
	"context"
	"fmt"
	"strings"

	"doclens/internal/embedding"
	"doclens/internal/models"
	"doclens/internal/nlp"
)

// How a requirement was satisfied.
const (
	MatchedByPattern  = "pattern"
	MatchedBySemantic = "semantic"
)

// Check is the outcome for one requirement.
type Check struct {
	Category       string  `json:"category" yaml:"category"`
	Requirement    string  `json:"description" yaml:"description"`
	Compliant      bool    `json:"compliant" yaml:"compliant"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
	Similarity     float64 `json:"similarity" yaml:"similarity"`
	BestMatch      string  `json:"best_match" yaml:"best_match"`
	MatchedBy      string  `json:"matched_by,omitempty" yaml:"matched_by,omitempty"`
	Recommendation string  `json:"recommendation" yaml:"recommendation"`
}

// Result is the compliance analysis of one document.
type Result struct {
	Checks               map[string][]Check `json:"checks" yaml:"checks"`
	OverallCompliant     bool               `json:"overall_compliant" yaml:"overall_compliant"`
	RegulatoryReferences map[string]int     `json:"regulatory_references" yaml:"regulatory_references"`
}

// Checker evaluates the requirement catalog.
type Checker struct {
	embedder *models.Handle[embedding.Embedder]
}

// NewChecker creates a checker. The embedder is only loaded when a
// requirement needs the semantic fallback.
func NewChecker(embedder *models.Handle[embedding.Embedder]) *Checker {
	return &Checker{embedder: embedder}
}

// Check runs every requirement against text. A requirement without a
// literal phrase match is compliant when the best phrasing-to-sentence
// similarity reaches threshold.
func (c *Checker) Check(ctx context.Context, text string, threshold float64) (*Result, error) {
	s := &session{
		checker:   c,
		lower:     strings.ToLower(text),
		sentences: nlp.SplitSentences(text),
	}

	res := &Result{
		Checks:               make(map[string][]Check, len(catalog)),
		OverallCompliant:     true,
		RegulatoryReferences: RegulatoryReferences(text),
	}
	for _, cat := range catalog {
		checks := make([]Check, 0, len(cat.requirements))
		for _, req := range cat.requirements {
			check, err := s.evaluate(ctx, cat.name, req, threshold)
			if err != nil {
				return nil, err
			}
			if !check.Compliant {
				res.OverallCompliant = false
			}
			checks = append(checks, check)
		}
		res.Checks[cat.name] = checks
	}
	return res, nil
}

// session holds per-call state; sentence vectors are computed at most once.
type session struct {
	checker   *Checker
	lower     string
	sentences []string

	embedder embedding.Embedder
	vectors  [][]float32
}

func (s *session) evaluate(ctx context.Context, category string, req Requirement, threshold float64) (Check, error) {
	check := Check{Category: category, Requirement: req.Description}

	for _, p := range req.Phrasings {
		if strings.Contains(s.lower, strings.ToLower(p)) {
			check.Compliant = true
			check.Confidence = 1.0
			check.MatchedBy = MatchedByPattern
			return check, nil
		}
	}

	if len(s.sentences) > 0 {
		best, match, err := s.bestMatch(ctx, req.Phrasings)
		if err != nil {
			return Check{}, fmt.Errorf("checking %q: %w", req.Description, err)
		}
		check.Similarity = best
		check.BestMatch = match
		check.MatchedBy = MatchedBySemantic
		if best >= threshold {
			check.Compliant = true
			check.Confidence = 1.0
			return check, nil
		}
		check.Confidence = best
	}

	check.Recommendation = req.Recommendation
	return check, nil
}

func (s *session) bestMatch(ctx context.Context, phrasings []string) (float64, string, error) {
	if err := s.embedSentences(ctx); err != nil {
		return 0, "", err
	}
	phraseVecs, err := s.embedder.Embed(ctx, phrasings)
	if err != nil {
		return 0, "", fmt.Errorf("embedding phrasings: %w", err)
	}

	var (
		best  float64
		match string
	)
	for _, pv := range phraseVecs {
		for i, sv := range s.vectors {
			if score := embedding.Cosine(pv, sv); score > best {
				best = score
				match = s.sentences[i]
			}
		}
	}
	return best, match, nil
}

func (s *session) embedSentences(ctx context.Context) error {
	if s.vectors != nil {
		return nil
	}
	e, err := s.checker.embedder.Get(ctx)
	if err != nil {
		return err
	}
	vectors, err := e.Embed(ctx, s.sentences)
	if err != nil {
		return fmt.Errorf("embedding sentences: %w", err)
	}
	if len(vectors) != len(s.sentences) {
		return fmt.Errorf("embedding sentences: got %d vectors for %d sentences", len(vectors), len(s.sentences))
	}
	s.embedder = e
	s.vectors = vectors
	return nil
}
