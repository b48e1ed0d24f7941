// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/analyzers/legal"
	"doclens/internal/config"
	"doclens/internal/document"
	"doclens/internal/embedding"
	"doclens/internal/models"
	"doclens/internal/nlp"
	"doclens/internal/preprocessors"
)

const contract = `MASTER SERVICE AGREEMENT
This Service Agreement is made on January 15, 2024 between Acme Widgets, Inc. and Globex Corporation.
Globex Corporation shall pay Acme Widgets, Inc. a fee of $12,500 per month.
Total Revenue: $5,000,000
Net Income: $1,000,000
The Supplier shall indemnify the Customer against all claims.
This Agreement is governed by the laws of the State of Delaware.
The parties comply with GDPR and generally accepted accounting principles.`

type stubLoader struct {
	doc   *document.Document
	err   error
	calls int
	opts  preprocessors.LoadOptions
}

func (s *stubLoader) Load(ctx context.Context, data []byte, filename string, opts preprocessors.LoadOptions) (*document.Document, error) {
	s.calls++
	s.opts = opts
	return s.doc, s.err
}

func newTestAnalyzer(loader DocumentLoader, entityErr error) *Analyzer {
	entities := models.NewHandle("entities", zerolog.Nop(), func(ctx context.Context) (nlp.EntityRecognizer, error) {
		if entityErr != nil {
			return nil, entityErr
		}
		return nlp.NewRuleRecognizer(), nil
	})
	embedder := models.NewHandle("embedding", zerolog.Nop(), func(ctx context.Context) (embedding.Embedder, error) {
		return embedding.NewLocalEmbedder(64), nil
	})
	return NewAnalyzer(loader, legal.NewAnalyzer(entities), compliance.NewChecker(embedder), zerolog.Nop())
}

func txtDoc(text string) *document.Document {
	return &document.Document{Text: text, Format: document.FormatTXT, Tables: []document.Table{}}
}

func TestAnalyzeAllChecks(t *testing.T) {
	loader := &stubLoader{doc: txtDoc(contract)}
	a := newTestAnalyzer(loader, nil)

	report, err := a.Analyze(context.Background(), Request{Filename: "msa.txt", Data: []byte(contract), OCR: true, Threshold: 0.5})
	require.NoError(t, err)

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.Equal(t, "msa.txt", report.Filename)
	assert.Equal(t, document.FormatTXT, report.Format)
	assert.Equal(t, len([]rune(contract)), report.Characters)
	assert.True(t, loader.opts.OCR)

	require.NotNil(t, report.Financial)
	assert.Equal(t, "$5,000,000.00", report.Financial.Metrics["Revenue"])
	assert.Equal(t, "20.00%", report.Financial.Metrics["Profit Margin"])

	require.NotNil(t, report.Legal)
	assert.Contains(t, report.Legal.ContractInfo.Parties, "Globex Corporation")
	assert.Equal(t, legal.RiskHigh, report.Legal.RiskClauses[legal.Indemnification].RiskLevel)

	require.NotNil(t, report.Compliance)
	assert.Equal(t, 1, report.Compliance.RegulatoryReferences["GDPR"])

	require.NotNil(t, report.Insights)
	assert.Equal(t, 3, report.Insights.RiskScores[legal.Indemnification])
}

func TestAnalyzeSelectedChecks(t *testing.T) {
	a := newTestAnalyzer(&stubLoader{doc: txtDoc(contract)}, nil)

	report, err := a.Analyze(context.Background(), Request{Filename: "msa.txt", Threshold: 0.5, Checks: []string{"legal-focus"}})
	require.NoError(t, err)
	assert.Nil(t, report.Financial)
	assert.Nil(t, report.Compliance)
	assert.NotNil(t, report.Legal)
	assert.NotNil(t, report.Insights)

	report, err = a.Analyze(context.Background(), Request{Filename: "msa.txt", Threshold: 0.5, Checks: []string{"financial"}})
	require.NoError(t, err)
	assert.NotNil(t, report.Financial)
	assert.Nil(t, report.Legal)
	assert.Nil(t, report.Insights.RiskScores)
}

func TestAnalyzeInvalidThreshold(t *testing.T) {
	loader := &stubLoader{doc: txtDoc("x")}
	a := newTestAnalyzer(loader, nil)

	for _, th := range []float64{-0.1, 1.01} {
		_, err := a.Analyze(context.Background(), Request{Filename: "a.txt", Threshold: th})
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	}
	assert.Zero(t, loader.calls)
}

func TestAnalyzeUnknownCheck(t *testing.T) {
	_, err := newTestAnalyzer(&stubLoader{doc: txtDoc("x")}, nil).
		Analyze(context.Background(), Request{Filename: "a.txt", Threshold: 0.5, Checks: []string{"tax"}})
	assert.ErrorIs(t, err, ErrUnknownCheck)
}

func TestAnalyzeLoaderError(t *testing.T) {
	loadErr := &document.UnsupportedFormatError{Format: "xls"}
	_, err := newTestAnalyzer(&stubLoader{err: loadErr}, nil).
		Analyze(context.Background(), Request{Filename: "a.xls", Threshold: 0.5})
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestAnalyzeModelUnavailable(t *testing.T) {
	a := newTestAnalyzer(&stubLoader{doc: txtDoc(contract)}, errors.New("weights missing"))

	// The failed section is reported while the others are kept.
	report, err := a.Analyze(context.Background(), Request{Filename: "a.txt", Threshold: 0.5})
	require.NoError(t, err)
	assert.Nil(t, report.Legal)
	require.NotNil(t, report.Financial)
	assert.Equal(t, "$5,000,000.00", report.Financial.Metrics["Revenue"])
	require.NotNil(t, report.Compliance)
	assert.Equal(t, 1, report.Compliance.RegulatoryReferences["GDPR"])
	require.Contains(t, report.Errors, CheckLegal)
	assert.Contains(t, report.Errors[CheckLegal], "weights missing")
	assert.NotContains(t, report.Errors, CheckCompliance)

	// Only the failing section was requested.
	_, err = a.Analyze(context.Background(), Request{Filename: "a.txt", Threshold: 0.5, Checks: []string{"legal"}})
	assert.ErrorIs(t, err, document.ErrModelUnavailable)

	// Financial-only requests never touch the entity model.
	report, err = a.Analyze(context.Background(), Request{Filename: "a.txt", Threshold: 0.5, Checks: []string{"financial"}})
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
}

func TestAnalyzeSectionFailureDoesNotCancelOthers(t *testing.T) {
	entities := models.NewHandle("entities", zerolog.Nop(), func(ctx context.Context) (nlp.EntityRecognizer, error) {
		return nil, errors.New("recognizer offline")
	})
	var embedderCtxErr error
	embedder := models.NewHandle("embedding", zerolog.Nop(), func(ctx context.Context) (embedding.Embedder, error) {
		embedderCtxErr = ctx.Err()
		return embedding.NewLocalEmbedder(64), nil
	})
	a := NewAnalyzer(&stubLoader{doc: txtDoc(contract)}, legal.NewAnalyzer(entities), compliance.NewChecker(embedder), zerolog.Nop())

	report, err := a.Analyze(context.Background(), Request{Filename: "a.txt", Threshold: 0.5, Checks: []string{"legal,compliance"}})
	require.NoError(t, err)
	assert.NoError(t, embedderCtxErr)
	assert.NotNil(t, report.Compliance)
	assert.Nil(t, report.Legal)
	assert.Len(t, report.Errors, 1)
}

func TestAnalyzeAllSectionsFail(t *testing.T) {
	entities := models.NewHandle("entities", zerolog.Nop(), func(ctx context.Context) (nlp.EntityRecognizer, error) {
		return nil, errors.New("recognizer offline")
	})
	embedder := models.NewHandle("embedding", zerolog.Nop(), func(ctx context.Context) (embedding.Embedder, error) {
		return nil, errors.New("embedder offline")
	})
	a := NewAnalyzer(&stubLoader{doc: txtDoc(contract)}, legal.NewAnalyzer(entities), compliance.NewChecker(embedder), zerolog.Nop())

	_, err := a.Analyze(context.Background(), Request{Filename: "a.txt", Threshold: 0.5, Checks: []string{"legal,compliance"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrModelUnavailable)
	assert.Contains(t, err.Error(), "recognizer offline")
	assert.Contains(t, err.Error(), "embedder offline")
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestAnalyzer(&stubLoader{doc: txtDoc(contract)}, nil).
		Analyze(ctx, Request{Filename: "a.txt", Threshold: 0.5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAnalyzerFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Models.Preload = true

	a, err := NewAnalyzerFromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	report, err := a.Analyze(context.Background(), Request{Filename: "msa.TXT", Data: []byte(contract), Threshold: 0.5})
	require.NoError(t, err)
	assert.Equal(t, document.FormatTXT, report.Format)
	assert.NotNil(t, report.Legal.ContractInfo.GoverningLaw)

	doc, err := a.Extract(context.Background(), "msa.txt", []byte("hello"), false)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Text)
}

func TestNewAnalyzerFromConfigBadProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Models.Preload = true
	cfg.Models.Entities.Provider = "spacy"

	_, err := NewAnalyzerFromConfig(context.Background(), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, document.ErrModelUnavailable)
}
