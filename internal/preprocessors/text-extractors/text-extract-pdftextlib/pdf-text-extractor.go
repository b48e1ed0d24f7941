// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page is the text layer of one PDF page.
type Page struct {
	Number int
	Text   string
	Rows   []Row
	Err    error
}

// Row is a line of positioned glyphs, left to right.
type Row struct {
	Y     float64
	Items []pdf.Text
}

// Content holds every page of a document in page order.
type Content struct {
	PageCount int
	Pages     []Page
}

// PreflightInfo is what pdfcpu reports about the file before extraction.
type PreflightInfo struct {
	PageCount int
}

// Preflight validates the file in relaxed mode and counts its pages.
func Preflight(filePath string) (*PreflightInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(filePath, conf); err != nil {
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}
	n, err := api.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	return &PreflightInfo{PageCount: n}, nil
}

// ExtractPages reads the text layer of every page. A page that fails or
// panics gets an empty Text and a non-nil Err; other pages are unaffected.
func ExtractPages(filePath string) (content *Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("error opening PDF: panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content = &Content{PageCount: r.NumPage()}
	content.Pages = make([]Page, content.PageCount)
	for i := 1; i <= content.PageCount; i++ {
		content.Pages[i-1] = extractPage(r, i)
	}
	return content, nil
}

func extractPage(r *pdf.Reader, num int) (page Page) {
	page.Number = num
	defer func() {
		if rec := recover(); rec != nil {
			page.Text, page.Rows = "", nil
			page.Err = fmt.Errorf("page %d: panic: %v", num, rec)
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		page.Err = fmt.Errorf("page %d: null page", num)
		return page
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		text, perr := p.GetPlainText(nil)
		if perr != nil {
			page.Err = fmt.Errorf("page %d: %w", num, perr)
			return page
		}
		page.Text = cleanTextPreservingStructure(text)
		return page
	}

	page.Rows = sortRows(rows)
	var buf bytes.Buffer
	for _, row := range page.Rows {
		line := reconstructRowText(row.Items)
		if strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	page.Text = cleanTextPreservingStructure(buf.String())
	return page
}

// sortRows orders rows top to bottom. PDF y grows upwards.
func sortRows(rows pdf.Rows) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row == nil || len(row.Content) == 0 {
			continue
		}
		items := make([]pdf.Text, len(row.Content))
		copy(items, row.Content)
		sort.SliceStable(items, func(i, j int) bool { return items[i].X < items[j].X })
		out = append(out, Row{Y: averageY(items), Items: items})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y > out[j].Y })
	return out
}

func averageY(items []pdf.Text) float64 {
	if len(items) == 0 {
		return 0
	}
	var total float64
	for _, it := range items {
		total += it.Y
	}
	return total / float64(len(items))
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 12
	}
	return t.FontSize
}

// reconstructRowText joins x-sorted glyphs, inserting a space wherever the
// gap exceeds 20% of the font size.
func reconstructRowText(items []pdf.Text) string {
	var buf bytes.Buffer
	for i, it := range items {
		buf.WriteString(it.S)
		if i < len(items)-1 {
			gap := items[i+1].X - (it.X + it.W)
			if gap > fontSize(it)*0.2 {
				buf.WriteString(" ")
			}
		}
	}
	return buf.String()
}

// cleanTextPreservingStructure trims lines, drops empty ones, converts tabs
// and collapses runs of spaces.
func cleanTextPreservingStructure(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(strings.ReplaceAll(line, "\t", " ")), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
