// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"doclens/internal/analyzers/compliance"
	"doclens/internal/analyzers/financial"
	"doclens/internal/analyzers/legal"
	"doclens/internal/core"
	"doclens/internal/formatters"
	"doclens/internal/formatters/shared"
	"doclens/internal/insights"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable report with colored risk levels"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []*core.Report, options formatters.FormatterOptions) ([]byte, error) {
	if len(reports) == 0 {
		return []byte("No documents analyzed.\n"), nil
	}

	w := &writer{colors: f.colors, noColor: options.NoColor}
	for i, r := range reports {
		if i > 0 {
			w.line("")
		}
		f.appendReport(w, r, options)
	}
	return []byte(w.b.String()), nil
}

// writer collects output and applies colors unless disabled.
type writer struct {
	b       strings.Builder
	colors  map[string]*color.Color
	noColor bool
}

func (w *writer) paint(name, format string, args ...any) string {
	if w.noColor {
		return fmt.Sprintf(format, args...)
	}
	return w.colors[name].Sprintf(format, args...)
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format+"\n", args...)
}

func (w *writer) heading(title string) {
	w.line("")
	w.line("%s", w.paint("white", "%s", title))
	w.line("%s", w.paint("white", "%s", strings.Repeat("-", len(title))))
}

func (f *Formatter) appendReport(w *writer, r *core.Report, options formatters.FormatterOptions) {
	w.line("%s", w.paint("white", "=== %s ===", r.Filename))
	summary := fmt.Sprintf("Format: %s | Characters: %d | Tables: %d", r.Format, r.Characters, r.Tables)
	if r.Pages > 0 {
		summary += fmt.Sprintf(" | Pages: %d", r.Pages)
	}
	if len(r.OCRPages) > 0 {
		summary += fmt.Sprintf(" | OCR pages: %v", r.OCRPages)
	}
	w.line("%s", summary)
	for _, warning := range r.Warnings {
		w.line("%s", w.paint("yellow", "warning: %s", warning))
	}
	for _, check := range shared.SortedKeys(r.Errors) {
		w.line("%s", w.paint("red", "error: %s", r.Errors[check]))
	}

	if r.Financial != nil {
		f.appendFinancial(w, r.Financial)
	}
	if r.Legal != nil {
		f.appendLegal(w, r.Legal, options.Verbose)
	}
	if r.Compliance != nil {
		f.appendCompliance(w, r.Compliance, options.Verbose)
	}
	if r.Insights != nil {
		f.appendInsights(w, r.Insights)
	}
}

func (f *Formatter) appendFinancial(w *writer, res *financial.Result) {
	w.heading("Financial Metrics")
	if len(res.Metrics) == 0 {
		w.line("  No financial metrics found.")
	}
	for _, name := range shared.SortedKeys(res.Metrics) {
		source := "derived"
		if rec, ok := res.Records[name]; ok {
			source = string(rec.Source)
		}
		w.line("  %-22s %s %s", name, w.paint("cyan", "%-20s", res.Metrics[name]), w.paint("magenta", "(%s)", source))
	}

	if len(res.Trends) > 0 {
		w.heading("Trends")
		for _, metric := range shared.SortedKeys(res.Trends) {
			var parts []string
			for _, period := range shared.SortedKeys(res.Trends[metric]) {
				parts = append(parts, fmt.Sprintf("%s %s", period, res.Trends[metric][period]))
			}
			w.line("  %-22s %s", metric, strings.Join(parts, ", "))
		}
	}
}

func (f *Formatter) riskColor(level legal.RiskLevel) string {
	switch level {
	case legal.RiskHigh:
		return "red"
	case legal.RiskMedium:
		return "yellow"
	case legal.RiskLow:
		return "green"
	default:
		return "white"
	}
}

func (f *Formatter) appendLegal(w *writer, res *legal.Result, verbose bool) {
	info := res.ContractInfo
	w.heading("Contract Information")
	w.line("  %-16s %s", "Type:", orNone(info.ContractType))
	w.line("  %-16s %s", "Parties:", joinOrNone(info.Parties))
	w.line("  %-16s %s", "Dates:", joinOrNone(info.Dates))
	w.line("  %-16s %s", "Governing law:", orNone(info.GoverningLaw))
	w.line("  %-16s %s", "Value:", orNone(res.ContractValue))
	w.line("  %-16s %s", "Duration:", orNone(res.Duration))

	w.heading("Risk Clauses")
	for _, name := range shared.ClauseOrder(res.RiskClauses) {
		c := res.RiskClauses[name]
		level := w.paint(f.riskColor(c.RiskLevel), "[%-6s]", strings.ToUpper(string(c.RiskLevel)))
		w.line("  %s %-24s %s", level, name, c.Description)
		if c.Recommendation != "" {
			w.line("           %s", w.paint("blue", "-> %s", c.Recommendation))
		}
		if verbose {
			for _, e := range c.Evidence {
				w.line("           > %s", oneLine(e))
			}
		}
	}

	if len(res.Obligations) > 0 {
		w.heading("Obligations")
		for _, party := range shared.SortedKeys(res.Obligations) {
			w.line("  %s", w.paint("cyan", "%s", party))
			for _, s := range res.Obligations[party] {
				w.line("    - %s", oneLine(s))
			}
		}
	}
}

func (f *Formatter) appendCompliance(w *writer, res *compliance.Result, verbose bool) {
	w.heading("Compliance")
	if res.OverallCompliant {
		w.line("  Overall: %s", w.paint("green", "COMPLIANT"))
	} else {
		w.line("  Overall: %s", w.paint("red", "NON-COMPLIANT"))
	}

	for _, category := range compliance.Categories() {
		checks := res.Checks[category]
		if len(checks) == 0 {
			continue
		}
		w.line("  %s", w.paint("cyan", "%s", category))
		for _, c := range checks {
			mark := w.paint("green", "[PASS]")
			if !c.Compliant {
				mark = w.paint("red", "[FAIL]")
			}
			how := ""
			if c.MatchedBy != "" {
				how = " " + c.MatchedBy
			}
			w.line("    %s %-40s %s%s", mark, c.Requirement, shared.FormatConfidence(c.Confidence), how)
			if c.Recommendation != "" {
				w.line("           %s", w.paint("blue", "-> %s", c.Recommendation))
			}
			if verbose && c.BestMatch != "" {
				w.line("           > %s (similarity %s)", oneLine(c.BestMatch), shared.FormatConfidence(c.Similarity))
			}
		}
	}

	if len(res.RegulatoryReferences) > 0 {
		var parts []string
		for _, reg := range shared.SortedKeys(res.RegulatoryReferences) {
			parts = append(parts, fmt.Sprintf("%s (%d)", reg, res.RegulatoryReferences[reg]))
		}
		w.line("  Regulatory references: %s", strings.Join(parts, ", "))
	}
}

func (f *Formatter) appendInsights(w *writer, res *insights.Result) {
	if len(res.KeyTerms) == 0 {
		return
	}
	w.heading("Key Terms")
	var parts []string
	for _, t := range res.KeyTerms {
		parts = append(parts, fmt.Sprintf("%s (%d)", t.Term, t.Count))
	}
	w.line("  %s", strings.Join(parts, ", "))
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, "; ")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
