// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"bytes"
	stdcsv "encoding/csv"
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/analyzers/financial"
	"doclens/internal/analyzers/legal"
	"doclens/internal/core"
	"doclens/internal/document"
	"doclens/internal/formatters"
	_ "doclens/internal/formatters/csv"
	_ "doclens/internal/formatters/json"
	_ "doclens/internal/formatters/text"
	_ "doclens/internal/formatters/xlsx"
	_ "doclens/internal/formatters/yaml"
	"doclens/internal/insights"
)

func ptr(s string) *string { return &s }

func sampleReport() *core.Report {
	return &core.Report{
		ID:         "7d0c8f1e-4c1b-4f0e-9d53-2f1f4b9c2a11",
		Filename:   "msa.pdf",
		Format:     document.FormatPDF,
		Characters: 1200,
		Tables:     1,
		Pages:      3,
		Warnings:   []string{"extraction degraded: page 2 unreadable"},
		Financial: &financial.Result{
			Metrics: map[string]string{"Revenue": "$5,000,000.00", "Profit Margin": "20.00%"},
			Records: map[string]financial.MetricRecord{
				"Revenue": {Name: "Revenue", RawValue: "5000000", FormattedValue: "$5,000,000.00", Source: financial.SourceTable},
			},
			Trends: map[string]map[string]string{"Revenue": {"2022": "4000000", "2023": "5000000"}},
		},
		Legal: &legal.Result{
			ContractInfo: legal.ContractInfo{
				Parties:      []string{"Acme Corp", "Globex LLC"},
				Dates:        []string{"January 15, 2024"},
				GoverningLaw: ptr("the State of Delaware"),
				ContractType: ptr("Service Agreement"),
			},
			RiskClauses: map[string]legal.ClauseFinding{
				legal.Indemnification: {
					Category: legal.Indemnification, Found: true, RiskLevel: legal.RiskHigh,
					MatchedPatterns: []string{"p"}, Evidence: []string{"shall indemnify against all claims"},
					Description:    "Found 1 instances of Indemnification language.",
					Recommendation: legal.Recommendation(legal.Indemnification, legal.RiskHigh),
				},
				legal.Termination: {Category: legal.Termination, MatchedPatterns: []string{}, RiskLevel: legal.RiskNotAvailable},
			},
			ContractValue: ptr("$12,500.00"),
			Obligations:   map[string][]string{"Globex LLC": {"Globex LLC shall pay monthly."}},
		},
		Compliance: &compliance.Result{
			Checks: map[string][]compliance.Check{
				compliance.FinancialReporting: {
					{Category: compliance.FinancialReporting, Requirement: "GAAP Compliance Statement", Compliant: true, Confidence: 1, MatchedBy: compliance.MatchedByPattern},
					{Category: compliance.FinancialReporting, Requirement: "SOX Section 404 - Internal Controls", Confidence: 0.42,
						Similarity: 0.42, BestMatch: "Controls are reviewed.", MatchedBy: compliance.MatchedBySemantic,
						Recommendation: "Add language about maintaining effective internal controls over financial reporting."},
				},
			},
			RegulatoryReferences: map[string]int{"GDPR": 2},
		},
		Insights: &insights.Result{
			KeyTerms:   []insights.TermCount{{Term: "services", Count: 4}},
			RiskScores: map[string]int{legal.Indemnification: 3, legal.Termination: 0},
		},
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "xlsx", "yaml"}, formatters.List())

	def, ok := formatters.Default()
	require.True(t, ok)
	assert.Equal(t, "text", def.Name())

	_, err := formatters.Export("sarif", nil, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv, json, text, xlsx, yaml")

	info := formatters.GetFormatInfo("xlsx")
	assert.True(t, info.Binary)
	assert.Equal(t, ".xlsx", info.Extension)
	assert.Len(t, formatters.GetSupportedFormats(), 5)

	_, mime, name, err := formatters.ExportForWeb("json", []*core.Report{sampleReport()}, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Equal(t, "application/json", mime)
	assert.Equal(t, "doclens-report.json", name)
}

func TestJSON(t *testing.T) {
	out, err := formatters.Export("json", []*core.Report{sampleReport()}, formatters.FormatterOptions{})
	require.NoError(t, err)

	var doc struct {
		Tool struct {
			Name string `json:"name"`
		} `json:"tool"`
		Reports []map[string]any `json:"reports"`
	}
	require.NoError(t, stdjson.Unmarshal(out, &doc))
	assert.Equal(t, "doclens", doc.Tool.Name)
	require.Len(t, doc.Reports, 1)
	assert.Equal(t, "msa.pdf", doc.Reports[0]["filename"])
	assert.Contains(t, doc.Reports[0], "legal")
	assert.NotContains(t, doc.Reports[0], "Duration")
}

func TestJSONEmpty(t *testing.T) {
	out, err := formatters.Export("json", nil, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"reports": []`)
}

func TestYAML(t *testing.T) {
	out, err := formatters.Export("yaml", []*core.Report{sampleReport()}, formatters.FormatterOptions{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yamlv3.Unmarshal(out, &doc))
	reports := doc["reports"].([]any)
	first := reports[0].(map[string]any)
	assert.Equal(t, "msa.pdf", first["filename"])
	assert.Equal(t, "pdf", first["format"])
}

func TestCSV(t *testing.T) {
	out, err := formatters.Export("csv", []*core.Report{sampleReport()}, formatters.FormatterOptions{})
	require.NoError(t, err)

	records, err := stdcsv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"file", "section", "category", "key", "value", "detail"}, records[0])
	assert.Contains(t, records, []string{"msa.pdf", "financial", "metric", "Revenue", "$5,000,000.00", "table"})
	assert.Contains(t, records, []string{"msa.pdf", "financial", "metric", "Profit Margin", "20.00%", "derived"})
	assert.Contains(t, records, []string{"msa.pdf", "financial", "trend", "Revenue", "4000000", "2022"})
	assert.Contains(t, records, []string{"msa.pdf", "legal", "Indemnification", "risk_level", "High", "Found 1 instances of Indemnification language."})
	assert.Contains(t, records, []string{"msa.pdf", "compliance", "Financial Reporting", "GAAP Compliance Statement", "compliant", "100.0% (pattern)"})
	assert.Contains(t, records, []string{"msa.pdf", "compliance", "reference", "GDPR", "2", ""})

	for _, r := range records {
		assert.NotEqual(t, "evidence", r[3], "evidence only in verbose mode")
	}

	verbose, err := formatters.Export("csv", []*core.Report{sampleReport()}, formatters.FormatterOptions{Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, string(verbose), "shall indemnify against all claims")
	assert.Contains(t, string(verbose), "best_match")
}

func TestText(t *testing.T) {
	out, err := formatters.Export("text", []*core.Report{sampleReport()}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	s := string(out)

	assert.NotContains(t, s, "\x1b[")
	assert.Contains(t, s, "=== msa.pdf ===")
	assert.Contains(t, s, "Pages: 3")
	assert.Contains(t, s, "warning: extraction degraded: page 2 unreadable")
	assert.Contains(t, s, "[HIGH  ] Indemnification")
	assert.Contains(t, s, "[N/A   ] Termination")
	assert.Contains(t, s, "Overall: NON-COMPLIANT")
	assert.Contains(t, s, "Regulatory references: GDPR (2)")
	assert.Contains(t, s, "services (4)")
	assert.NotContains(t, s, "> shall indemnify")

	verbose, err := formatters.Export("text", []*core.Report{sampleReport()}, formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, string(verbose), "> shall indemnify against all claims")
	assert.Contains(t, string(verbose), "> Controls are reviewed. (similarity 42.0%)")
}

func TestTextEmpty(t *testing.T) {
	out, err := formatters.Export("text", nil, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "No documents analyzed.\n", string(out))
}

func TestXLSX(t *testing.T) {
	out, err := formatters.Export("xlsx", []*core.Report{sampleReport()}, formatters.FormatterOptions{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Summary", "Metrics", "Trends", "Clauses", "Compliance"}, wb.GetSheetList())

	metrics, err := wb.GetRows("Metrics")
	require.NoError(t, err)
	assert.Equal(t, []string{"File", "Metric", "Value", "Source"}, metrics[0])
	assert.Equal(t, []string{"msa.pdf", "Profit Margin", "20.00%", "derived"}, metrics[1])
	assert.Equal(t, []string{"msa.pdf", "Revenue", "$5,000,000.00", "table"}, metrics[2])

	trends, err := wb.GetRows("Trends")
	require.NoError(t, err)
	assert.Len(t, trends, 3)

	clauses, err := wb.GetRows("Clauses")
	require.NoError(t, err)
	assert.Equal(t, "Indemnification", clauses[1][1])
	assert.Equal(t, "High", clauses[1][3])

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, "msa.pdf", summary[1][0])
	assert.Equal(t, "false", summary[1][5])
}

func TestSectionErrors(t *testing.T) {
	r := sampleReport()
	r.Compliance = nil
	r.Errors = map[string]string{"compliance": "compliance check: model embedder unavailable: timeout"}
	reports := []*core.Report{r}

	out, err := formatters.Export("json", reports, formatters.FormatterOptions{})
	require.NoError(t, err)
	var decoded struct {
		Reports []struct {
			Errors map[string]string `json:"errors"`
		} `json:"reports"`
	}
	require.NoError(t, stdjson.Unmarshal(out, &decoded))
	require.Len(t, decoded.Reports, 1)
	assert.Equal(t, r.Errors, decoded.Reports[0].Errors)

	out, err = formatters.Export("text", reports, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), "error: compliance check: model embedder unavailable: timeout")
	assert.Contains(t, string(out), "Revenue")

	out, err = formatters.Export("csv", reports, formatters.FormatterOptions{})
	require.NoError(t, err)
	records, err := stdcsv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Contains(t, records, []string{"msa.pdf", "document", "error", "compliance", r.Errors["compliance"], ""})

	out, err = formatters.Export("xlsx", reports, formatters.FormatterOptions{})
	require.NoError(t, err)
	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close()
	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, "Errors", summary[0][7])
	assert.Equal(t, r.Errors["compliance"], summary[1][7])
}
