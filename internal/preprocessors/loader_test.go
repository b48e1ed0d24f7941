// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclens/internal/document"
	"doclens/internal/models"
	"doclens/internal/ocr"
	textextractpdftextlib "doclens/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

type fakeEngine struct {
	text  string
	err   error
	calls []string
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	f.calls = append(f.calls, filepath.Base(imagePath))
	return f.text, f.err
}

type fakeRasterizer struct {
	pages []int
}

func (f *fakeRasterizer) RenderPage(ctx context.Context, pdfPath string, page int, dpi float64, outPath string) error {
	f.pages = append(f.pages, page)
	return os.WriteFile(outPath, []byte("png"), 0o600)
}

func engineHandle(e ocr.Engine) *models.Handle[ocr.Engine] {
	return models.NewHandle("ocr", zerolog.Nop(), func(context.Context) (ocr.Engine, error) { return e, nil })
}

func newTestLoader(t *testing.T, engine ocr.Engine, pages ...textextractpdftextlib.Page) (*Loader, string, *fakeRasterizer) {
	t.Helper()
	tmp := t.TempDir()
	var handle *models.Handle[ocr.Engine]
	if engine != nil {
		handle = engineHandle(engine)
	}
	l := NewLoader(LoaderConfig{TempDir: tmp, Tables: true}, handle, zerolog.Nop())
	r := &fakeRasterizer{}
	l.SetRasterizer(r)
	l.preflight = func(path string) (*textextractpdftextlib.PreflightInfo, error) {
		return nil, errors.New("relaxed validation failed")
	}
	l.extractPages = func(path string) (*textextractpdftextlib.Content, error) {
		_, err := os.Stat(path)
		require.NoError(t, err)
		return &textextractpdftextlib.Content{PageCount: len(pages), Pages: pages}, nil
	}
	return l, tmp, r
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadTextStripsBOMAndReplacesInvalidBytes(t *testing.T) {
	l := NewLoader(LoaderConfig{}, nil, zerolog.Nop())
	doc, err := l.Load(context.Background(), []byte("\xEF\xBB\xBFRevenue: $5 \xff end"), "report.TXT", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Revenue: $5 � end", doc.Text)
	assert.Equal(t, document.FormatTXT, doc.Format)
	assert.NotNil(t, doc.Tables)
	assert.Empty(t, doc.Tables)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	l := NewLoader(LoaderConfig{}, nil, zerolog.Nop())
	for _, name := range []string{"sheet.xlsx", "noext", "image.png"} {
		_, err := l.Load(context.Background(), []byte("x"), name, LoadOptions{})
		assert.ErrorIs(t, err, document.ErrUnsupportedFormat, name)
	}
}

func TestLoadDocx(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>First</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	l := NewLoader(LoaderConfig{}, nil, zerolog.Nop())
	doc, err := l.Load(context.Background(), buf.Bytes(), "contract.docx", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "First\nSecond", doc.Text)

	_, err = l.Load(context.Background(), []byte("corrupt"), "contract.docx", LoadOptions{})
	assert.ErrorIs(t, err, document.ErrExtractionFailed)
}

func TestLoadPDFJoinsNonEmptyPages(t *testing.T) {
	l, tmp, r := newTestLoader(t, &fakeEngine{text: "never"},
		textextractpdftextlib.Page{Number: 1, Text: "Page one"},
		textextractpdftextlib.Page{Number: 2, Text: "   "},
		textextractpdftextlib.Page{Number: 3, Text: "Page three"},
	)

	doc, err := l.Load(context.Background(), []byte("%PDF-1.7"), "a.pdf", LoadOptions{OCR: false})
	require.NoError(t, err)
	assert.Equal(t, "Page one\nPage three", doc.Text)
	assert.Equal(t, 3, doc.Pages)
	assert.Empty(t, r.pages)
	assert.Empty(t, doc.OCRPages)
	assertEmptyDir(t, tmp)
}

func TestLoadPDFRunsOCROnlyOnEmptyPages(t *testing.T) {
	engine := &fakeEngine{text: "Scanned 0I text"}
	l, tmp, r := newTestLoader(t, engine,
		textextractpdftextlib.Page{Number: 1, Text: "Layer text"},
		textextractpdftextlib.Page{Number: 2, Text: ""},
	)

	doc, err := l.Load(context.Background(), []byte("%PDF-1.7"), "a.pdf", LoadOptions{OCR: true})
	require.NoError(t, err)
	assert.Equal(t, "Layer text\nScanned 0I text", doc.Text)
	assert.Equal(t, []int{2}, r.pages)
	assert.Equal(t, []int{2}, doc.OCRPages)
	assert.Equal(t, []string{"page-2.png"}, engine.calls)
	assertEmptyDir(t, tmp)
}

func TestLoadPDFOCRFailureDegrades(t *testing.T) {
	l, tmp, _ := newTestLoader(t, &fakeEngine{err: errors.New("engine crashed")},
		textextractpdftextlib.Page{Number: 1, Text: "Kept"},
		textextractpdftextlib.Page{Number: 2, Err: errors.New("bad stream")},
	)

	doc, err := l.Load(context.Background(), []byte("%PDF-1.7"), "a.pdf", LoadOptions{OCR: true})
	require.NoError(t, err)
	assert.Equal(t, "Kept", doc.Text)
	require.Len(t, doc.Warnings, 2)
	assert.Contains(t, doc.Warnings[0], "page 2 text layer unreadable")
	assert.Contains(t, doc.Warnings[1], "page 2 OCR failed")
	assertEmptyDir(t, tmp)
}

func TestLoadPDFWithoutEngineDegrades(t *testing.T) {
	l, _, _ := newTestLoader(t, nil, textextractpdftextlib.Page{Number: 1})
	doc, err := l.Load(context.Background(), []byte("%PDF-1.7"), "a.pdf", LoadOptions{OCR: true})
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "no OCR engine configured")
}

func TestLoadPDFTableFailureYieldsEmptyList(t *testing.T) {
	l, tmp, _ := newTestLoader(t, nil, textextractpdftextlib.Page{Number: 1, Text: "Revenue 100"})
	l.detectTables = func(*textextractpdftextlib.Content, textextractpdftextlib.TableOptions) []document.Table {
		panic("malformed content stream")
	}

	doc, err := l.Load(context.Background(), []byte("%PDF-1.7"), "a.pdf", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Revenue 100", doc.Text)
	assert.NotNil(t, doc.Tables)
	assert.Empty(t, doc.Tables)
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "table extraction failed")
	assertEmptyDir(t, tmp)
}

func TestLoadPDFExtractionErrorCleansUp(t *testing.T) {
	l, tmp, _ := newTestLoader(t, nil)
	l.extractPages = func(string) (*textextractpdftextlib.Content, error) {
		return nil, errors.New("not a PDF file")
	}

	_, err := l.Load(context.Background(), []byte("garbage"), "a.pdf", LoadOptions{})
	assert.ErrorIs(t, err, document.ErrExtractionFailed)
	assertEmptyDir(t, tmp)
}

func TestLoadRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLoader(LoaderConfig{}, nil, zerolog.Nop())
	_, err := l.Load(ctx, []byte("x"), "a.txt", LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadRejectsOversizedDocument(t *testing.T) {
	l := NewLoader(LoaderConfig{Limits: ResourceLimits{MaxBytes: 4}}, nil, zerolog.Nop())

	_, err := l.Load(context.Background(), []byte("hello"), "a.txt", LoadOptions{})
	assert.ErrorIs(t, err, document.ErrLimitExceeded)

	var limitErr *LimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "size", limitErr.Limit)
	assert.Equal(t, int64(5), limitErr.Value)

	doc, err := l.Load(context.Background(), []byte("hell"), "a.txt", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hell", doc.Text)
}

func TestLoadPDFRejectsTooManyPages(t *testing.T) {
	l, tmp, _ := newTestLoader(t, nil, textextractpdftextlib.Page{Number: 1, Text: "x"})
	l.cfg.Limits = ResourceLimits{MaxPages: 2}
	l.preflight = func(path string) (*textextractpdftextlib.PreflightInfo, error) {
		return &textextractpdftextlib.PreflightInfo{PageCount: 3}, nil
	}

	_, err := l.Load(context.Background(), []byte("%PDF-1.7"), "a.pdf", LoadOptions{})
	assert.ErrorIs(t, err, document.ErrLimitExceeded)
	assert.EqualError(t, err, "document has 3 pages, the limit is 2")
	assertEmptyDir(t, tmp)
}

func TestResourceLimitsDisabled(t *testing.T) {
	var limits ResourceLimits
	assert.NoError(t, limits.CheckSize(1<<30))
	assert.NoError(t, limits.CheckPages(1<<20))
	assert.Equal(t, 2000, DefaultResourceLimits().MaxPages)
}
