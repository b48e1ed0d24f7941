// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"doclens/internal/resilience"
)

const defaultGeminiModel = "gemini-embedding-001"

// GeminiConfig configures the Gemini embedding provider.
type GeminiConfig struct {
	APIKey    string
	Model     string
	Dimension int
	BatchSize int
}

type geminiModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder uses the Gemini API through the GenAI SDK.
type GeminiEmbedder struct {
	models  geminiModels
	cfg     GeminiConfig
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewGeminiEmbedder creates a GenAI client for the Gemini API backend.
func NewGeminiEmbedder(ctx context.Context, cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiEmbedder(client.Models, cfg), nil
}

func newGeminiEmbedder(models geminiModels, cfg GeminiConfig) *GeminiEmbedder {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	return &GeminiEmbedder{
		models:  models,
		cfg:     cfg,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("embedding-gemini")),
	}
}

func (g *GeminiEmbedder) Model() string  { return g.cfg.Model }
func (g *GeminiEmbedder) Dimension() int { return g.cfg.Dimension }

func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var embedCfg *genai.EmbedContentConfig
	if g.cfg.Dimension > 0 {
		embedCfg = &genai.EmbedContentConfig{
			TaskType:             "SEMANTIC_SIMILARITY",
			OutputDimensionality: genai.Ptr(int32(g.cfg.Dimension)),
		}
	}

	out := make([][]float32, 0, len(texts))
	for _, b := range batches(len(texts), g.cfg.BatchSize) {
		var contents []*genai.Content
		for _, t := range texts[b[0]:b[1]] {
			contents = append(contents, genai.Text(t)...)
		}

		resp, err := resilience.RetryWithCircuitBreaker(ctx, g.retry, g.breaker,
			func(ctx context.Context) (*genai.EmbedContentResponse, error) {
				return g.models.EmbedContent(ctx, g.cfg.Model, contents, embedCfg)
			})
		if err != nil {
			return nil, fmt.Errorf("gemini embedding failed: %w", err)
		}
		if len(resp.Embeddings) != b[1]-b[0] {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(resp.Embeddings), b[1]-b[0])
		}
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
	}
	return out, nil
}
