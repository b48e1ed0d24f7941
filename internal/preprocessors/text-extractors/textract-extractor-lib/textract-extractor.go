// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textract_extractor_lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"doclens/internal/resilience"
)

// DetectDocumentText accepts at most 10 MB of synchronous image bytes.
const maxImageBytes = 10 << 20

// TextractAPI is the subset of the Textract client used for page OCR.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// ExtractedContent is the OCR result for one rendered page.
type ExtractedContent struct {
	Text       string
	LineCount  int
	Confidence float64
}

// Engine runs Amazon Textract on rendered page images.
type Engine struct {
	client  TextractAPI
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewEngine loads the default AWS configuration for region.
func NewEngine(ctx context.Context, region string) (*Engine, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewEngineWithClient(textract.NewFromConfig(cfg)), nil
}

// NewEngineWithClient wraps an existing Textract client.
func NewEngineWithClient(client TextractAPI) *Engine {
	return &Engine{
		client:  client,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("textract")),
	}
}

func (e *Engine) Name() string { return "textract" }

// Recognize returns the LINE blocks of the image joined by newlines.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	content, err := e.ExtractText(ctx, imagePath)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

// ExtractText sends the image bytes to DetectDocumentText.
func (e *Engine) ExtractText(ctx context.Context, imagePath string) (*ExtractedContent, error) {
	data, err := os.ReadFile(filepath.Clean(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("page image is %d bytes, textract accepts at most %d", len(data), maxImageBytes)
	}

	result, err := resilience.RetryWithCircuitBreaker(ctx, e.retry, e.breaker,
		func(ctx context.Context) (*textract.DetectDocumentTextOutput, error) {
			return e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
				Document: &types.Document{Bytes: data},
			})
		})
	if err != nil {
		return nil, fmt.Errorf("textract API call failed: %w", err)
	}

	content := &ExtractedContent{}
	var lines []string
	var totalConfidence float32
	var confidenceCount int

	for _, block := range result.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		if block.Text != nil {
			lines = append(lines, *block.Text)
		}
		if block.Confidence != nil {
			totalConfidence += *block.Confidence
			confidenceCount++
		}
	}

	content.Text = strings.Join(lines, "\n")
	content.LineCount = len(lines)
	if confidenceCount > 0 {
		content.Confidence = float64(totalConfidence) / float64(confidenceCount)
	}
	return content, nil
}
