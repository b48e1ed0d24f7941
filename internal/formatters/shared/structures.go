// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/analyzers/legal"
	"doclens/internal/core"
	"doclens/internal/version"
)

// Response is the top-level structure for JSON/YAML output
type Response struct {
	Tool        ToolInfo       `json:"tool" yaml:"tool"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Reports     []*core.Report `json:"reports" yaml:"reports"`
}

// ToolInfo identifies the producer of a report
type ToolInfo struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// NewResponse wraps reports with tool metadata
func NewResponse(reports []*core.Report) Response {
	if reports == nil {
		reports = []*core.Report{}
	}
	return Response{
		Tool:        ToolInfo{Name: "doclens", Version: version.Short()},
		GeneratedAt: time.Now().UTC(),
		Reports:     reports,
	}
}

// Row sections.
const (
	SectionDocument   = "document"
	SectionFinancial  = "financial"
	SectionLegal      = "legal"
	SectionCompliance = "compliance"
	SectionInsights   = "insights"
)

// Row is one flattened fact of a report, used by tabular formats
type Row struct {
	File     string
	Section  string
	Category string
	Key      string
	Value    string
	Detail   string
}

// Header is the column order of Row.Strings.
var Header = []string{"file", "section", "category", "key", "value", "detail"}

// Strings returns the row in Header order
func (r Row) Strings() []string {
	return []string{r.File, r.Section, r.Category, r.Key, r.Value, r.Detail}
}

// SortedKeys returns the keys of m in lexical order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClauseOrder returns the clause categories present in clauses, in report order.
func ClauseOrder(clauses map[string]legal.ClauseFinding) []string {
	var out []string
	for _, name := range legal.Categories() {
		if _, ok := clauses[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// FormatConfidence renders a 0..1 score as a percentage.
func FormatConfidence(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// ComplianceStatus is the display word for a check outcome.
func ComplianceStatus(c compliance.Check) string {
	if c.Compliant {
		return "compliant"
	}
	return "non-compliant"
}

// FlattenReport converts a report into rows. Verbose adds clause evidence and
// best-match sentences.
func FlattenReport(r *core.Report, verbose bool) []Row {
	var rows []Row
	add := func(section, category, key, value, detail string) {
		rows = append(rows, Row{File: r.Filename, Section: section, Category: category, Key: key, Value: value, Detail: detail})
	}

	add(SectionDocument, "", "format", string(r.Format), "")
	add(SectionDocument, "", "characters", strconv.Itoa(r.Characters), "")
	add(SectionDocument, "", "tables", strconv.Itoa(r.Tables), "")
	if r.Pages > 0 {
		add(SectionDocument, "", "pages", strconv.Itoa(r.Pages), "")
	}
	for _, w := range r.Warnings {
		add(SectionDocument, "", "warning", w, "")
	}
	for _, check := range SortedKeys(r.Errors) {
		add(SectionDocument, "error", check, r.Errors[check], "")
	}

	if f := r.Financial; f != nil {
		for _, name := range SortedKeys(f.Metrics) {
			detail := "derived"
			if rec, ok := f.Records[name]; ok {
				detail = string(rec.Source)
			}
			add(SectionFinancial, "metric", name, f.Metrics[name], detail)
		}
		for _, metric := range SortedKeys(f.Trends) {
			for _, period := range SortedKeys(f.Trends[metric]) {
				add(SectionFinancial, "trend", metric, f.Trends[metric][period], period)
			}
		}
	}

	if l := r.Legal; l != nil {
		info := l.ContractInfo
		add(SectionLegal, "contract", "parties", strings.Join(info.Parties, "; "), "")
		add(SectionLegal, "contract", "dates", strings.Join(info.Dates, "; "), "")
		add(SectionLegal, "contract", "governing_law", deref(info.GoverningLaw), "")
		add(SectionLegal, "contract", "contract_type", deref(info.ContractType), "")
		add(SectionLegal, "contract", "value", deref(l.ContractValue), "")
		add(SectionLegal, "contract", "duration", deref(l.Duration), "")

		for _, name := range ClauseOrder(l.RiskClauses) {
			c := l.RiskClauses[name]
			add(SectionLegal, name, "risk_level", string(c.RiskLevel), c.Description)
			if c.Recommendation != "" {
				add(SectionLegal, name, "recommendation", c.Recommendation, "")
			}
			if verbose {
				for _, e := range c.Evidence {
					add(SectionLegal, name, "evidence", e, "")
				}
			}
		}

		for _, party := range SortedKeys(l.Obligations) {
			for _, s := range l.Obligations[party] {
				add(SectionLegal, "obligation", party, s, "")
			}
		}
	}

	if c := r.Compliance; c != nil {
		for _, category := range compliance.Categories() {
			for _, check := range c.Checks[category] {
				detail := FormatConfidence(check.Confidence)
				if check.MatchedBy != "" {
					detail += " (" + check.MatchedBy + ")"
				}
				add(SectionCompliance, category, check.Requirement, ComplianceStatus(check), detail)
				if check.Recommendation != "" {
					add(SectionCompliance, category, "recommendation", check.Recommendation, check.Requirement)
				}
				if verbose && check.BestMatch != "" {
					add(SectionCompliance, category, "best_match", check.BestMatch, check.Requirement)
				}
			}
		}
		add(SectionCompliance, "", "overall_compliant", strconv.FormatBool(c.OverallCompliant), "")
		for _, reg := range SortedKeys(c.RegulatoryReferences) {
			add(SectionCompliance, "reference", reg, strconv.Itoa(c.RegulatoryReferences[reg]), "")
		}
	}

	if in := r.Insights; in != nil {
		for _, t := range in.KeyTerms {
			add(SectionInsights, "key_term", t.Term, strconv.Itoa(t.Count), "")
		}
		for _, name := range SortedKeys(in.RiskScores) {
			add(SectionInsights, "risk_score", name, strconv.Itoa(in.RiskScores[name]), "")
		}
	}

	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
