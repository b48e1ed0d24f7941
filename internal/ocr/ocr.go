// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ocr recognises text on rendered PDF pages.
package ocr

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"doclens/internal/config"
	textractlib "doclens/internal/preprocessors/text-extractors/textract-extractor-lib"
)

// Engine turns a page image into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Rasterizer renders a single PDF page (1-based) to a PNG file.
type Rasterizer interface {
	RenderPage(ctx context.Context, pdfPath string, page int, dpi float64, outPath string) error
}

// New builds the engine selected by cfg.Engine.
func New(ctx context.Context, cfg config.OCRConfig, logger zerolog.Logger) (Engine, error) {
	switch cfg.Engine {
	case "", "tesseract":
		return NewTesseract(TesseractConfig{
			Binary:      cfg.Tesseract.Binary,
			Language:    cfg.Tesseract.Language,
			PSM:         cfg.Tesseract.PSM,
			TessdataDir: cfg.Tesseract.TessdataDir,
		}, NewExecRunner(logger)), nil
	case "textract":
		return textractlib.NewEngine(ctx, cfg.Textract.Region)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}
}
