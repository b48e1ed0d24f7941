// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"doclens/internal/config"
	"doclens/internal/core"
	"doclens/internal/document"
	"doclens/internal/formatters"
	"doclens/internal/observability"
	"doclens/internal/version"

	// Import formatters to register them
	_ "doclens/internal/formatters/csv"
	_ "doclens/internal/formatters/json"
	_ "doclens/internal/formatters/text"
	_ "doclens/internal/formatters/xlsx"
	_ "doclens/internal/formatters/yaml"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// multipart parts beyond this size spill to temporary files
const formMemory = 8 << 20

// ReportAnalyzer is the part of core.Analyzer the API needs.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, req core.Request) (*core.Report, error)
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Server represents the HTTP API instance
type Server struct {
	cfg      config.ServerConfig
	defaults config.Defaults
	analyzer ReportAnalyzer
	logger   zerolog.Logger
	server   *http.Server
}

// NewServer creates a new API server. Form fields that are omitted fall back
// to cfg.Defaults.
func NewServer(cfg *config.Config, analyzer ReportAnalyzer, logger zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg.Server,
		defaults: cfg.Defaults,
		analyzer: analyzer,
		logger:   observability.Component(logger, "web"),
	}
}

// Handler returns the routed API with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chimiddleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("API listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
		return s.Stop(context.Background())
	}
}

// Stop shuts the server down, waiting up to ten seconds for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("API shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Full()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "doclens",
		"version":   info["version"],
		"build_info": map[string]string{
			"commit":     info["commit"],
			"build_date": info["buildDate"],
			"go_version": info["goVersion"],
			"platform":   info["platform"],
		},
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": formatters.DefaultFormat,
		"formats": formatters.GetSupportedFormats(),
	})
}

// analyzeForm holds the parsed form fields of POST /api/analyze.
type analyzeForm struct {
	filename  string
	data      []byte
	ocr       bool
	threshold float64
	checks    []string
	format    string
	verbose   bool
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	form, status, err := s.parseAnalyzeForm(w, r)
	if err != nil {
		s.sendError(w, r, status, err)
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), core.Request{
		Filename:  form.filename,
		Data:      form.data,
		OCR:       form.ocr,
		Threshold: form.threshold,
		Checks:    form.checks,
	})
	if err != nil {
		s.sendError(w, r, StatusForError(err), err)
		return
	}

	content, mimeType, filename, err := formatters.ExportForWeb(form.format, []*core.Report{report},
		formatters.FormatterOptions{Verbose: form.verbose, NoColor: true})
	if err != nil {
		s.sendError(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	if formatters.GetFormatInfo(form.format).Binary {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) parseAnalyzeForm(w http.ResponseWriter, r *http.Request) (*analyzeForm, int, error) {
	maxBytes := s.cfg.MaxUploadMB << 20
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(formMemory); err != nil {
		if isTooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d MB", s.cfg.MaxUploadMB)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to parse form data: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("no file uploaded in the 'file' field")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isTooLarge(err) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d MB", s.cfg.MaxUploadMB)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("read upload: %w", err)
	}

	form := &analyzeForm{
		filename:  header.Filename,
		data:      data,
		ocr:       s.defaults.EnableOCR,
		threshold: s.defaults.ConfidenceThreshold,
		format:    "json",
	}

	if v := r.FormValue("ocr"); v != "" {
		if form.ocr, err = strconv.ParseBool(v); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid ocr value %q", v)
		}
	}
	if v := r.FormValue("verbose"); v != "" {
		if form.verbose, err = strconv.ParseBool(v); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid verbose value %q", v)
		}
	}
	if v := r.FormValue("threshold"); v != "" {
		if form.threshold, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid threshold %q", v)
		}
	}

	checks := r.FormValue("checks")
	if checks == "" {
		checks = s.defaults.Checks
	}
	form.checks = []string{checks}

	if v := strings.ToLower(strings.TrimSpace(r.FormValue("format"))); v != "" {
		form.format = v
	}
	if _, ok := formatters.Get(form.format); !ok {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported output format %q (available: %s)",
			form.format, strings.Join(formatters.List(), ", "))
	}

	return form, 0, nil
}

// StatusForError maps analysis errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, document.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, document.ErrLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidThreshold), errors.Is(err, core.ErrUnknownCheck):
		return http.StatusBadRequest
	case errors.Is(err, document.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, document.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// sendError writes the JSON error body and logs server-side failures.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, status int, err error) {
	id := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("request_id", id).Int("status", status).Msg("request failed")
	} else {
		s.logger.Debug().Err(err).Str("request_id", id).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
