// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package legal

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"doclens/internal/analyzers/financial"
	"doclens/internal/nlp"
)

const (
	maxParties = 10
	maxDates   = 5

	// GeneralObligations keys the fallback obligation list.
	GeneralObligations = "General Obligations"
	maxGeneral         = 5
)

// ContractInfo holds the basic facts of a contract.
type ContractInfo struct {
	Parties      []string `json:"parties" yaml:"parties"`
	Dates        []string `json:"dates" yaml:"dates"`
	GoverningLaw *string  `json:"governing_law" yaml:"governing_law"`
	ContractType *string  `json:"contract_type" yaml:"contract_type"`
}

var (
	partyDenylist = []string{"Inc", "LLC", "Ltd", "Corporation", "Company", "Corp"}

	governingLawPattern = regexp.MustCompile(`(?i)governed by the laws of ([^,.;]*)`)

	contractTypes = []string{
		"service agreement", "lease agreement", "employment contract",
		"non-disclosure agreement", "purchase agreement", "license agreement",
		"consulting agreement", "master service agreement",
	}

	valuePatterns = compileAll(
		`contract value of \$?([0-9,\.]+)`,
		`total value of \$?([0-9,\.]+)`,
		`agreement .* worth \$?([0-9,\.]+)`,
		`consideration of \$?([0-9,\.]+)`,
		`fee of \$?([0-9,\.]+)`,
		`amount of \$?([0-9,\.]+)`,
	)

	durationPatterns = compileAll(
		`term of (?:this|the) agreement (?:is|shall be) ([^.;]*)`,
		`agreement (?:shall|will) (?:remain|be) in (?:effect|force) for ([^.;]*)`,
		`duration of (?:this|the) agreement (?:is|shall be) ([^.;]*)`,
		`(?:this|the) agreement (?:shall|will) continue for ([^.;]*)`,
		`(?:this|the) agreement (?:shall|will) expire on ([^.;]*)`,
	)

	obligationTerms = []string{"shall", "must", "required to", "agrees to", "will"}

	titleCaser = cases.Title(language.English)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// ExtractContractInfo builds the contract facts from recognized entities and text patterns.
func ExtractContractInfo(text string, entities []nlp.Entity, minScore float64) ContractInfo {
	info := ContractInfo{Parties: []string{}, Dates: []string{}}

	for _, party := range nlp.Texts(entities, nlp.LabelOrg, minScore) {
		if slices.Contains(partyDenylist, party) || slices.Contains(info.Parties, party) || len(party) < 3 {
			continue
		}
		info.Parties = append(info.Parties, party)
	}
	if len(info.Parties) > maxParties {
		info.Parties = info.Parties[:maxParties]
	}

	dates := nlp.Texts(entities, nlp.LabelDate, minScore)
	if len(dates) > maxDates {
		dates = dates[:maxDates]
	}
	info.Dates = append(info.Dates, dates...)

	if m := governingLawPattern.FindStringSubmatch(text); m != nil {
		law := strings.TrimSpace(m[1])
		info.GoverningLaw = &law
	}

	lower := strings.ToLower(text)
	for _, ct := range contractTypes {
		if strings.Contains(lower, ct) {
			title := titleCaser.String(ct)
			info.ContractType = &title
			break
		}
	}
	return info
}

// ExtractContractValue returns the first stated contract value as currency,
// or nil when no pattern matches or the amount cannot be parsed.
func ExtractContractValue(text string) *string {
	for _, re := range valuePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := financial.FormatCurrency(strings.ReplaceAll(m[1], ",", ""))
		if !ok {
			return nil
		}
		return &v
	}
	return nil
}

// ExtractDuration returns the first stated contract term.
func ExtractDuration(text string) *string {
	for _, re := range durationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			d := strings.TrimSpace(m[1])
			return &d
		}
	}
	return nil
}

// ExtractObligations maps each party to the sentences that bind it. When no
// party has an obligation the first few obligation sentences are returned
// under GeneralObligations.
func ExtractObligations(text string, parties []string) map[string][]string {
	sentences := nlp.SplitSentences(text)
	lowered := make([]string, len(sentences))
	for i, s := range sentences {
		lowered[i] = strings.ToLower(s)
	}

	out := make(map[string][]string)
	seen := make(map[string]bool)
	for _, party := range parties {
		if seen[party] {
			continue
		}
		seen[party] = true
		needle := strings.ToLower(party)
		for i, s := range sentences {
			if strings.Contains(lowered[i], needle) && isObligation(lowered[i]) {
				out[party] = append(out[party], s)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	var general []string
	for i, s := range sentences {
		if isObligation(lowered[i]) {
			general = append(general, s)
			if len(general) == maxGeneral {
				break
			}
		}
	}
	if len(general) > 0 {
		out[GeneralObligations] = general
	}
	return out
}

func isObligation(lower string) bool {
	for _, term := range obligationTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
