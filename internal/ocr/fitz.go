// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ocr

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders pages with MuPDF through go-fitz.
type FitzRasterizer struct{}

func (FitzRasterizer) RenderPage(ctx context.Context, pdfPath string, page int, dpi float64, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dpi <= 0 {
		dpi = 200
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF for rendering: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return fmt.Errorf("page %d out of range (document has %d)", page, doc.NumPage())
	}

	img, err := doc.ImageDPI(page-1, dpi)
	if err != nil {
		return fmt.Errorf("failed to render page %d: %w", page, err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create page image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode page %d as PNG: %w", page, err)
	}
	return f.Close()
}
