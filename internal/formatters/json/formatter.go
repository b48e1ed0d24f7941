// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"doclens/internal/core"
	"doclens/internal/formatters"
	"doclens/internal/formatters/shared"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(reports []*core.Report, options formatters.FormatterOptions) ([]byte, error) {
	data, err := json.MarshalIndent(shared.NewResponse(reports), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("formatting JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
