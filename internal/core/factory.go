// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/analyzers/legal"
	"doclens/internal/cache"
	"doclens/internal/config"
	"doclens/internal/embedding"
	"doclens/internal/models"
	"doclens/internal/nlp"
	"doclens/internal/ocr"
	"doclens/internal/preprocessors"
)

// Handles groups the lazily loaded models.
type Handles struct {
	OCR      *models.Handle[ocr.Engine]
	Entities *models.Handle[nlp.EntityRecognizer]
	Embedder *models.Handle[embedding.Embedder]
}

// NewHandles creates model handles for cfg. Nothing is loaded until first use.
func NewHandles(cfg *config.Config, store cache.Store, logger zerolog.Logger) Handles {
	return Handles{
		OCR: models.NewHandle("ocr:"+cfg.OCR.Engine, logger, func(ctx context.Context) (ocr.Engine, error) {
			return ocr.New(ctx, cfg.OCR, logger)
		}),
		Entities: models.NewHandle("entities:"+cfg.Models.Entities.Provider, logger, func(ctx context.Context) (nlp.EntityRecognizer, error) {
			return NewEntityRecognizer(ctx, cfg.Models.Entities)
		}),
		Embedder: models.NewHandle("embedding:"+cfg.Models.Embedding.Provider, logger, func(ctx context.Context) (embedding.Embedder, error) {
			return embedding.New(ctx, cfg.Models.Embedding, store, cfg.Cache)
		}),
	}
}

// NewEntityRecognizer builds the recognizer selected by cfg.Provider.
func NewEntityRecognizer(ctx context.Context, cfg config.EntitiesConfig) (nlp.EntityRecognizer, error) {
	switch cfg.Provider {
	case "", "rules":
		return nlp.NewRuleRecognizer(), nil
	case "comprehend":
		return nlp.NewComprehendRecognizer(ctx, cfg.Region)
	default:
		return nil, fmt.Errorf("unknown entity provider %q", cfg.Provider)
	}
}

// NewAnalyzerFromConfig builds the loader, model handles and analyzers described
// by cfg. With models.preload set, the entity recognizer and embedder are
// loaded before returning.
func NewAnalyzerFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Analyzer, error) {
	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}

	handles := NewHandles(cfg, store, logger)
	if cfg.Models.Preload {
		if _, err := handles.Entities.Get(ctx); err != nil {
			closeStore(store)
			return nil, err
		}
		if _, err := handles.Embedder.Get(ctx); err != nil {
			closeStore(store)
			return nil, err
		}
	}

	loader := preprocessors.NewLoader(preprocessors.LoaderConfigFrom(cfg), handles.OCR, logger)
	a := NewAnalyzer(loader, legal.NewAnalyzer(handles.Entities), compliance.NewChecker(handles.Embedder), logger)
	if store != nil {
		a.closers = append(a.closers, store.Close)
	}
	return a, nil
}

func closeStore(store cache.Store) {
	if store != nil {
		_ = store.Close()
	}
}
