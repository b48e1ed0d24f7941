// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package embedding turns sentences into vectors for semantic matching.
package embedding

import (
	"context"
	"fmt"
	"math"

	"doclens/internal/cache"
	"doclens/internal/config"
)

// Embedder produces one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
	Dimension() int
}

// New builds the configured provider, wrapped with a cache when store is non-nil.
func New(ctx context.Context, cfg config.EmbeddingConfig, store cache.Store, cacheCfg config.CacheConfig) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch cfg.Provider {
	case "", "local":
		e = NewLocalEmbedder(cfg.Dimension)
	case "http":
		e, err = NewHTTPEmbedder(HTTPConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey(),
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		})
	case "gemini":
		e, err = NewGeminiEmbedder(ctx, GeminiConfig{
			APIKey:    cfg.APIKey(),
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
			BatchSize: cfg.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if store != nil {
		e = NewCachedEmbedder(e, store, cacheCfg.TTL)
	}
	return e, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either is empty,
// zero or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func batches(n, size int) [][2]int {
	if size <= 0 {
		size = n
	}
	var out [][2]int
	for i := 0; i < n; i += size {
		out = append(out, [2]int{i, min(i+size, n)})
	}
	return out
}
