// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"

	"doclens/internal/document"
)

// ResourceLimits bounds the documents the loader accepts. Zero disables a limit.
type ResourceLimits struct {
	MaxBytes int64 // Maximum document size in bytes
	MaxPages int   // Maximum PDF page count
}

// DefaultResourceLimits returns the limits used when none are configured.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		MaxBytes: 100 * 1024 * 1024, // 100MB
		MaxPages: 2000,
	}
}

// LimitError reports a document rejected by ResourceLimits.
type LimitError struct {
	Limit string // "size" or "pages"
	Value int64
	Max   int64
}

func (e *LimitError) Error() string {
	if e.Limit == "size" {
		return fmt.Sprintf("document size %d bytes exceeds the limit of %d bytes", e.Value, e.Max)
	}
	return fmt.Sprintf("document has %d %s, the limit is %d", e.Value, e.Limit, e.Max)
}

func (e *LimitError) Is(target error) bool {
	return target == document.ErrLimitExceeded
}

// CheckSize rejects documents larger than MaxBytes.
func (r ResourceLimits) CheckSize(size int) error {
	if r.MaxBytes > 0 && int64(size) > r.MaxBytes {
		return &LimitError{Limit: "size", Value: int64(size), Max: r.MaxBytes}
	}
	return nil
}

// CheckPages rejects PDFs with more than MaxPages pages.
func (r ResourceLimits) CheckPages(pages int) error {
	if r.MaxPages > 0 && pages > r.MaxPages {
		return &LimitError{Limit: "pages", Value: int64(pages), Max: int64(r.MaxPages)}
	}
	return nil
}
