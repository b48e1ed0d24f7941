// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package models holds process-wide, lazily loaded model handles.
package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"doclens/internal/document"
)

// Loader builds a model. It is called until one call returns a result that
// is not a context cancellation.
type Loader[T any] func(ctx context.Context) (T, error)

// Handle loads a model on first use and shares it between goroutines.
// A failed load is sticky; every later Get returns the same error. A load
// that fails because the caller's context ended is not kept, so the next Get
// retries.
type Handle[T any] struct {
	name   string
	load   Loader[T]
	logger zerolog.Logger

	mu    sync.Mutex
	done  bool
	ready atomic.Bool
	value T
	err   error
}

// NewHandle returns an unloaded handle.
func NewHandle[T any](name string, logger zerolog.Logger, load Loader[T]) *Handle[T] {
	return &Handle[T]{name: name, load: load, logger: logger}
}

// Name returns the model name used in errors and logs.
func (h *Handle[T]) Name() string { return h.name }

// Get returns the loaded model. Errors wrap document.ErrModelUnavailable.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	if h.ready.Load() {
		return h.value, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return h.value, h.err
	}

	start := time.Now()
	value, err := h.load(ctx)
	if err != nil {
		err = &document.ModelError{Model: h.name, Err: err}
		if isCancellation(ctx, err) {
			h.logger.Debug().Err(err).Str("model", h.name).Msg("model load interrupted")
			var zero T
			return zero, err
		}
		h.logger.Error().Err(err).Str("model", h.name).Msg("model load failed")
		h.err = err
		h.done = true
		return value, err
	}

	h.value = value
	h.done = true
	h.ready.Store(true)
	h.logger.Debug().Str("model", h.name).Dur("load_time", time.Since(start)).Msg("model loaded")
	return value, nil
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Loaded reports whether the model has been loaded successfully.
func (h *Handle[T]) Loaded() bool {
	return h.ready.Load()
}
