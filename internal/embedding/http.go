// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doclens/internal/resilience"
	"doclens/internal/version"
)

// HTTPConfig configures an OpenAI-compatible /embeddings endpoint.
type HTTPConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	BatchSize int
	Timeout   time.Duration
}

// HTTPEmbedder calls an OpenAI-compatible embeddings API.
type HTTPEmbedder struct {
	httpClient *http.Client
	cfg        HTTPConfig
	retry      resilience.RetryConfig
	breaker    *resilience.CircuitBreaker
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewHTTPEmbedder validates cfg and returns an embedder.
func NewHTTPEmbedder(cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("embedding base_url is required for the http provider")
	}
	if cfg.Model == "" {
		return nil, errors.New("embedding model is required for the http provider")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPEmbedder{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		retry:      resilience.DefaultRetryConfig(),
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("embedding-http")),
	}, nil
}

func (h *HTTPEmbedder) Model() string  { return h.cfg.Model }
func (h *HTTPEmbedder) Dimension() int { return h.cfg.Dimension }

func (h *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, b := range batches(len(texts), h.cfg.BatchSize) {
		vecs, err := resilience.RetryWithCircuitBreaker(ctx, h.retry, h.breaker,
			func(ctx context.Context) ([][]float32, error) {
				return h.embedBatch(ctx, texts[b[0]:b[1]])
			})
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", b[0], b[1], err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (h *HTTPEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: texts, Model: h.cfg.Model})
	if err != nil {
		return nil, resilience.NewPermanentError("marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, resilience.NewPermanentError("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed embeddingResponse
	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &resilience.StatusError{Provider: "embedding", StatusCode: resp.StatusCode, Body: msg}
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, resilience.NewPermanentError("unmarshal response", err)
	}

	vecs := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index >= 0 && d.Index < len(vecs) {
			vecs[d.Index] = d.Embedding
		}
	}
	for i, v := range vecs {
		if v == nil {
			return nil, resilience.NewPermanentError(fmt.Sprintf("no embedding returned for input %d", i), nil)
		}
	}
	return vecs, nil
}
