// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// TesseractConfig configures the tesseract CLI.
type TesseractConfig struct {
	Binary      string // default "tesseract"
	Language    string // default "eng"
	PSM         int
	TessdataDir string
}

// Tesseract shells out to the tesseract binary.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract fills defaults and returns the engine.
func NewTesseract(cfg TesseractConfig, runner Runner) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs: tesseract <image> stdout -l <lang> [--psm n] [--tessdata-dir d]
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.cfg.Language}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(strings.ReplaceAll(string(out), "\f", "")), nil
}
