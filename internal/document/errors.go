// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is matched by every *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrModelUnavailable means an embedding or entity model could not be initialised.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrExtractionFailed means the document could not be read at all.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrLimitExceeded means the document is larger than the configured limits.
	ErrLimitExceeded = errors.New("document limit exceeded")
)

// UnsupportedFormatError is returned for anything outside pdf, txt and docx.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return "unsupported file type: missing extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ModelError wraps an initialisation failure of a named model.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s unavailable: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() []error {
	return []error{ErrModelUnavailable, e.Err}
}

// Degradation formats an extraction-degraded notice.
func Degradation(format string, args ...any) string {
	return "extraction degraded: " + fmt.Sprintf(format, args...)
}
