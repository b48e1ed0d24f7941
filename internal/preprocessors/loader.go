// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"

	"doclens/internal/config"
	"doclens/internal/document"
	"doclens/internal/models"
	"doclens/internal/observability"
	"doclens/internal/ocr"
	textextractofficetextlib "doclens/internal/preprocessors/text-extractors/text-extract-officetextlib"
	textextractpdftextlib "doclens/internal/preprocessors/text-extractors/text-extract-pdftextlib"
)

// LoadOptions are per-call loader switches.
type LoadOptions struct {
	OCR bool
}

// LoaderConfig holds the loader settings taken from config.Config.
type LoaderConfig struct {
	DPI         float64
	PageTimeout time.Duration
	TempDir     string
	Tables      bool
	TableOpts   textextractpdftextlib.TableOptions
	Limits      ResourceLimits
}

// LoaderConfigFrom maps the file configuration onto LoaderConfig.
func LoaderConfigFrom(cfg *config.Config) LoaderConfig {
	return LoaderConfig{
		DPI:         cfg.OCR.DPI,
		PageTimeout: cfg.OCR.PageTimeout,
		TempDir:     cfg.OCR.TempDir,
		Tables:      cfg.Tables.Enabled,
		TableOpts: textextractpdftextlib.TableOptions{
			MinRows: cfg.Tables.MinRows,
			CellGap: cfg.Tables.CellGap,
		},
		Limits: ResourceLimits{
			MaxBytes: cfg.Limits.MaxDocumentMB << 20,
			MaxPages: cfg.Limits.MaxPages,
		},
	}
}

// Loader turns raw uploads into a document.Document.
type Loader struct {
	cfg        LoaderConfig
	engine     *models.Handle[ocr.Engine]
	rasterizer ocr.Rasterizer
	observer   *observability.StandardObserver
	logger     zerolog.Logger

	preflight    func(path string) (*textextractpdftextlib.PreflightInfo, error)
	extractPages func(path string) (*textextractpdftextlib.Content, error)
	detectTables func(content *textextractpdftextlib.Content, opts textextractpdftextlib.TableOptions) []document.Table
}

// NewLoader creates a loader. engine may be nil, in which case OCR requests
// degrade with a warning.
func NewLoader(cfg LoaderConfig, engine *models.Handle[ocr.Engine], logger zerolog.Logger) *Loader {
	return &Loader{
		cfg:          cfg,
		engine:       engine,
		rasterizer:   ocr.FitzRasterizer{},
		logger:       observability.Component(logger, "loader"),
		preflight:    textextractpdftextlib.Preflight,
		extractPages: textextractpdftextlib.ExtractPages,
		detectTables: textextractpdftextlib.DetectTables,
	}
}

// SetObserver sets the observability component
func (l *Loader) SetObserver(observer *observability.StandardObserver) {
	l.observer = observer
}

// SetRasterizer replaces the page renderer used for OCR.
func (l *Loader) SetRasterizer(r ocr.Rasterizer) {
	l.rasterizer = r
}

// Load extracts text and tables from data. The format comes from the
// filename extension.
func (l *Loader) Load(ctx context.Context, data []byte, filename string, opts LoadOptions) (*document.Document, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if l.observer != nil {
		finishTiming = l.observer.StartTiming("loader", "load", filename)
		if l.observer.DebugObserver != nil {
			finishStep = l.observer.DebugObserver.StartStep("loader", "load", filename)
		}
	}

	doc, err := l.load(ctx, data, filename, opts)

	if finishTiming != nil {
		metadata := map[string]interface{}{"bytes": len(data), "ocr": opts.OCR}
		if doc != nil {
			metadata["format"] = string(doc.Format)
			metadata["chars"] = len(doc.Text)
			metadata["tables"] = len(doc.Tables)
			metadata["warnings"] = len(doc.Warnings)
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}
	if finishStep != nil {
		if err != nil {
			finishStep(false, fmt.Sprintf("Failed to load document: %v", err))
		} else {
			finishStep(true, fmt.Sprintf("Loaded %s: %d chars, %d tables", doc.Format, len(doc.Text), len(doc.Tables)))
		}
	}

	return doc, err
}

func (l *Loader) load(ctx context.Context, data []byte, filename string, opts LoadOptions) (*document.Document, error) {
	format, err := document.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	if err := l.cfg.Limits.CheckSize(len(data)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case document.FormatTXT:
		return l.loadText(data)
	case document.FormatDOCX:
		return l.loadDocx(data)
	default:
		return l.loadPDF(ctx, data, opts)
	}
}

// loadText decodes UTF-8, dropping a leading BOM and replacing invalid bytes with U+FFFD.
func (l *Loader) loadText(data []byte) (*document.Document, error) {
	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode text: %w", document.ErrExtractionFailed, err)
	}
	return &document.Document{
		Text:   string(decoded),
		Tables: []document.Table{},
		Format: document.FormatTXT,
	}, nil
}

func (l *Loader) loadDocx(data []byte) (*document.Document, error) {
	content, err := textextractofficetextlib.ExtractDocxText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract text from DOCX: %w", document.ErrExtractionFailed, err)
	}
	return &document.Document{
		Text:   content.Text,
		Tables: []document.Table{},
		Format: document.FormatDOCX,
	}, nil
}

func (l *Loader) loadPDF(ctx context.Context, data []byte, opts LoadOptions) (*document.Document, error) {
	dir, err := os.MkdirTemp(l.cfg.TempDir, "doclens-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			l.logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove temp directory")
		}
	}()

	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	doc := &document.Document{Format: document.FormatPDF, Tables: []document.Table{}}

	if info, err := l.preflight(path); err != nil {
		l.logger.Warn().Err(err).Msg("pdf preflight failed, extracting anyway")
	} else {
		doc.Pages = info.PageCount
		if err := l.cfg.Limits.CheckPages(info.PageCount); err != nil {
			return nil, err
		}
	}

	content, err := l.extractPages(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract text from PDF: %w", document.ErrExtractionFailed, err)
	}
	if doc.Pages == 0 {
		doc.Pages = content.PageCount
	}

	var texts []string
	for _, page := range content.Pages {
		if page.Err != nil {
			l.logger.Warn().Err(page.Err).Int("page", page.Number).Msg("page text extraction failed")
			doc.Degraded("page %d text layer unreadable: %v", page.Number, page.Err)
		}

		text := strings.TrimSpace(page.Text)
		if text == "" && opts.OCR {
			ocrText, err := l.ocrPage(ctx, path, dir, page.Number)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				l.logger.Warn().Err(err).Int("page", page.Number).Msg("ocr failed")
				doc.Degraded("page %d OCR failed: %v", page.Number, err)
			} else if ocrText != "" {
				text = ocrText
				doc.OCRPages = append(doc.OCRPages, page.Number)
			}
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	doc.Text = strings.Join(texts, "\n")

	if l.cfg.Tables {
		tables, err := l.safeDetectTables(content)
		if err != nil {
			l.logger.Warn().Err(err).Msg("table extraction failed")
			doc.Degraded("table extraction failed: %v", err)
		} else {
			doc.Tables = tables
		}
	}

	return doc, nil
}

func (l *Loader) safeDetectTables(content *textextractpdftextlib.Content) (tables []document.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	tables = l.detectTables(content, l.cfg.TableOpts)
	if tables == nil {
		tables = []document.Table{}
	}
	return tables, nil
}

// ocrPage renders one page into dir and recognises it.
func (l *Loader) ocrPage(ctx context.Context, pdfPath, dir string, page int) (string, error) {
	if l.engine == nil {
		return "", fmt.Errorf("no OCR engine configured")
	}
	engine, err := l.engine.Get(ctx)
	if err != nil {
		return "", err
	}

	if l.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.PageTimeout)
		defer cancel()
	}

	image := filepath.Join(dir, fmt.Sprintf("page-%d.png", page))
	if err := l.rasterizer.RenderPage(ctx, pdfPath, page, l.cfg.DPI, image); err != nil {
		return "", err
	}
	defer os.Remove(image)

	text, err := engine.Recognize(ctx, image)
	if err != nil {
		return "", fmt.Errorf("%s: %w", engine.Name(), err)
	}
	return strings.TrimSpace(text), nil
}
