// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package document holds the normalized representation produced by the loader
// and consumed by every analyzer.
package document

import (
	"path/filepath"
	"strings"
)

// Format is a supported input format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
	FormatDOCX Format = "docx"
)

// SupportedFormats lists the formats the loader accepts, in display order.
var SupportedFormats = []Format{FormatPDF, FormatTXT, FormatDOCX}

// ParseFormat accepts "pdf", ".PDF" and similar spellings.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, supported := range SupportedFormats {
		if f == supported {
			return f, nil
		}
	}
	return "", &UnsupportedFormatError{Format: string(f)}
}

// FormatFromFilename derives the declared format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// Table is a grid of cells. Rows[0] is treated as the header row.
type Table struct {
	Page int        `json:"page,omitempty" yaml:"page,omitempty"`
	Rows [][]string `json:"rows" yaml:"rows"`
}

// Header returns the first row, or nil for an empty table.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// CellCount returns the number of cells across all rows.
func (t Table) CellCount() int {
	n := 0
	for _, row := range t.Rows {
		n += len(row)
	}
	return n
}

// String flattens the table to text, one row per line.
func (t Table) String() string {
	var b strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, " "))
	}
	return b.String()
}

// Document is the loader output. It is not modified after Load returns.
type Document struct {
	Text   string  `json:"text"`
	Tables []Table `json:"tables"`

	Format   Format   `json:"format"`
	Pages    int      `json:"pages,omitempty"`
	OCRPages []int    `json:"ocr_pages,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Degraded records a non-fatal extraction problem.
func (d *Document) Degraded(format string, args ...any) {
	d.Warnings = append(d.Warnings, Degradation(format, args...))
}
