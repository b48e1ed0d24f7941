// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"time"

	"doclens/internal/cache"
)

// CachedEmbedder memoises vectors per (model, text).
type CachedEmbedder struct {
	inner Embedder
	store cache.Store
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner with store.
func NewCachedEmbedder(inner Embedder, store cache.Store, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: store, ttl: ttl}
}

func (c *CachedEmbedder) Model() string  { return c.inner.Model() }
func (c *CachedEmbedder) Dimension() int { return c.inner.Dimension() }

// Embed serves hits from the store and embeds all misses in one inner call.
// Store failures other than a miss are treated as misses.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missing []string
		slots   []int
	)
	for i, t := range texts {
		raw, err := c.store.Get(ctx, c.key(t))
		if err == nil {
			if v, ok := decodeVector(raw); ok {
				out[i] = v
				continue
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		missing = append(missing, t)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		out[slots[j]] = v
		_ = c.store.Set(ctx, c.key(missing[j]), encodeVector(v), c.ttl)
	}
	return out, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.inner.Model() + ":" + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, bool) {
	if len(b)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}
