// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContract = `SERVICE AGREEMENT
This Service Agreement is made on March 1, 2024 between Acme Widgets, Inc. and Globex Corporation.
Total Revenue: $2,400,000
Net Income: $300,000
Globex Corporation shall pay the fees within thirty days.
This Agreement shall be governed by the laws of the State of New York.`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "doclens")
}

func TestFormatsCommand(t *testing.T) {
	code, out, _ := runCLI(t, "formats")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "* text")
	assert.Contains(t, out, "xlsx")
}

func TestProfilesCommand(t *testing.T) {
	code, out, _ := runCLI(t, "profiles")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "comprehensive")
	assert.Contains(t, out, "legal-focus")
}

func TestUsageErrors(t *testing.T) {
	file := writeFile(t, "msa.txt", sampleContract)

	tests := []struct {
		name string
		args []string
	}{
		{"no files", []string{"analyze"}},
		{"unknown flag", []string{"analyze", "--frobnicate", file}},
		{"unknown command", []string{"scan", file}},
		{"threshold out of range", []string{"analyze", "--threshold", "1.5", file}},
		{"unknown check", []string{"analyze", "--checks", "tax", file}},
		{"unknown format", []string{"analyze", "--format", "sarif", file}},
		{"unknown profile", []string{"analyze", "--profile", "nope", file}},
		{"extract two files", []string{"extract", file, file}},
		{"version with args", []string{"version", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code, stderr)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestAnalyzeJSON(t *testing.T) {
	file := writeFile(t, "msa.txt", sampleContract)

	code, out, stderr := runCLI(t, "analyze", "--format", "json", "--ocr=false", "--quiet", file)
	require.Equal(t, exitOK, code, stderr)

	var doc struct {
		Reports []struct {
			Filename  string         `json:"filename"`
			Format    string         `json:"format"`
			Financial map[string]any `json:"financial"`
			Legal     struct {
				ContractInfo struct {
					GoverningLaw *string `json:"governing_law"`
				} `json:"contract_info"`
			} `json:"legal"`
		} `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Reports, 1)
	assert.Equal(t, file, doc.Reports[0].Filename)
	assert.Equal(t, "txt", doc.Reports[0].Format)
	assert.NotNil(t, doc.Reports[0].Financial)
	require.NotNil(t, doc.Reports[0].Legal.ContractInfo.GoverningLaw)
}

func TestAnalyzeChecksLimitSections(t *testing.T) {
	file := writeFile(t, "msa.txt", sampleContract)

	code, out, stderr := runCLI(t, "analyze", "--format", "json", "--checks", "financial", "--quiet", file)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, out, `"financial"`)
	assert.NotContains(t, out, `"legal"`)
	assert.NotContains(t, out, `"compliance"`)
}

func TestAnalyzeProfile(t *testing.T) {
	file := writeFile(t, "msa.txt", sampleContract)

	code, out, stderr := runCLI(t, "analyze", "--profile", "legal-focus", "--format", "json", "--quiet", file)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, out, `"legal"`)
	assert.NotContains(t, out, `"financial"`)
}

func TestAnalyzeTextNoColor(t *testing.T) {
	file := writeFile(t, "msa.txt", sampleContract)

	code, out, _ := runCLI(t, "analyze", "--no-color", "--quiet", file)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "=== "+file+" ===")
	assert.Contains(t, out, "Risk Clauses")
	assert.NotContains(t, out, "\x1b[")
}

func TestAnalyzeMultipleFilesToOutput(t *testing.T) {
	first := writeFile(t, "a.txt", sampleContract)
	second := writeFile(t, "b.txt", "Net Income: $10,000")
	output := filepath.Join(t.TempDir(), "out", "report.csv")

	code, out, stderr := runCLI(t, "analyze", "--format", "csv", "--output", output, "--workers", "2", first, second)
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Report written to "+output)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file,section,category,key,value,detail")
	assert.Contains(t, string(content), first)
	assert.Contains(t, string(content), second)
}

func TestAnalyzeFailures(t *testing.T) {
	good := writeFile(t, "ok.txt", sampleContract)
	unsupported := writeFile(t, "sheet.xls", "x")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	code, out, stderr := runCLI(t, "analyze", "--format", "json", good, unsupported, missing)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "2 of 3 documents failed")
	assert.Contains(t, out, "ok.txt", "successful reports are still written")
}

func TestExtract(t *testing.T) {
	file := writeFile(t, "notes.txt", "First line\nSecond line")

	code, out, stderr := runCLI(t, "extract", file)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "First line\nSecond line\n", out)

	code, out, _ = runCLI(t, "extract", "--json", file)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"format": "txt"`)
}

func TestExtractUnsupported(t *testing.T) {
	file := writeFile(t, "slides.pptx", "x")

	code, _, stderr := runCLI(t, "extract", file)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "unsupported file type: pptx")
}
