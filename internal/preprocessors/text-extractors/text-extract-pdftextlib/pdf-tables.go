// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"doclens/internal/document"
)

// TableOptions tunes stream table detection.
type TableOptions struct {
	MinRows int     // minimum consecutive multi-cell rows
	CellGap float64 // horizontal gap, in font sizes, that separates cells
}

type cell struct {
	x    float64
	text string
}

// DetectTables finds tables in every page of content.
func DetectTables(content *Content, opts TableOptions) []document.Table {
	if opts.MinRows < 2 {
		opts.MinRows = 2
	}
	if opts.CellGap <= 0 {
		opts.CellGap = 1.5
	}

	var tables []document.Table
	for _, page := range content.Pages {
		for _, rows := range detectPageTables(page.Rows, opts) {
			tables = append(tables, document.Table{Page: page.Number, Rows: rows})
		}
	}
	return tables
}

// detectPageTables groups consecutive rows that split into at least two
// cells and aligns each group to shared column anchors.
func detectPageTables(rows []Row, opts TableOptions) [][][]string {
	var (
		tables [][][]string
		run    [][]cell
	)
	flush := func() {
		if len(run) >= opts.MinRows {
			tables = append(tables, alignColumns(run))
		}
		run = nil
	}

	for _, row := range rows {
		cells := splitCells(row.Items, opts.CellGap)
		if len(cells) < 2 {
			flush()
			continue
		}
		run = append(run, cells)
	}
	flush()
	return tables
}

// splitCells breaks a row wherever the gap between glyphs is at least
// cellGap font sizes.
func splitCells(items []pdf.Text, cellGap float64) []cell {
	var (
		cells []cell
		buf   bytes.Buffer
		start float64
	)
	emit := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			cells = append(cells, cell{x: start, text: strings.Join(strings.Fields(text), " ")})
		}
		buf.Reset()
	}

	for i, it := range items {
		if i == 0 {
			start = it.X
		} else {
			prev := items[i-1]
			gap := it.X - (prev.X + prev.W)
			size := fontSize(prev)
			switch {
			case gap >= size*cellGap:
				emit()
				start = it.X
			case gap > size*0.2:
				buf.WriteString(" ")
			}
		}
		buf.WriteString(it.S)
	}
	emit()
	return cells
}

// alignColumns uses the widest row's cell positions as column anchors and
// places every cell under the nearest anchor.
func alignColumns(run [][]cell) [][]string {
	anchors := run[0]
	for _, cells := range run[1:] {
		if len(cells) > len(anchors) {
			anchors = cells
		}
	}

	out := make([][]string, 0, len(run))
	for _, cells := range run {
		row := make([]string, len(anchors))
		for _, c := range cells {
			col := nearest(anchors, c.x)
			if row[col] != "" {
				row[col] += " " + c.text
			} else {
				row[col] = c.text
			}
		}
		out = append(out, row)
	}
	return out
}

func nearest(anchors []cell, x float64) int {
	best, dist := 0, math.Inf(1)
	for i, a := range anchors {
		if d := math.Abs(a.x - x); d < dist {
			best, dist = i, d
		}
	}
	return best
}
