// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package legal extracts contract facts and grades risk clauses.
package legal

import (
	"context"
	"fmt"

	"doclens/internal/models"
	"doclens/internal/nlp"
)

// Result is the legal analysis of one document.
type Result struct {
	ContractInfo  ContractInfo             `json:"contract_info" yaml:"contract_info"`
	RiskClauses   map[string]ClauseFinding `json:"risk_clauses" yaml:"risk_clauses"`
	ContractValue *string                  `json:"contract_value" yaml:"contract_value"`
	Obligations   map[string][]string      `json:"obligations" yaml:"obligations"`
	Duration      *string                  `json:"duration" yaml:"duration"`
}

// Analyzer runs the legal extractions. The entity recognizer is loaded on
// first use and shared by all calls.
type Analyzer struct {
	recognizer *models.Handle[nlp.EntityRecognizer]
}

// NewAnalyzer creates an analyzer backed by the given recognizer handle.
func NewAnalyzer(recognizer *models.Handle[nlp.EntityRecognizer]) *Analyzer {
	return &Analyzer{recognizer: recognizer}
}

// Analyze extracts contract info, risk clauses, value, obligations and duration.
// Entities scoring below threshold are ignored.
func (a *Analyzer) Analyze(ctx context.Context, text string, threshold float64) (*Result, error) {
	recognizer, err := a.recognizer.Get(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := recognizer.Recognize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("recognizing entities with %s: %w", recognizer.Name(), err)
	}

	return &Result{
		ContractInfo:  ExtractContractInfo(text, entities, threshold),
		RiskClauses:   IdentifyRiskClauses(text),
		ContractValue: ExtractContractValue(text),
		Obligations:   ExtractObligations(text, nlp.Texts(entities, nlp.LabelOrg, threshold)),
		Duration:      ExtractDuration(text),
	}, nil
}
