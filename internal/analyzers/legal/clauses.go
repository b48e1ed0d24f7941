// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package legal

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RiskLevel grades a clause finding.
type RiskLevel string

const (
	RiskLow          RiskLevel = "Low"
	RiskMedium       RiskLevel = "Medium"
	RiskHigh         RiskLevel = "High"
	RiskNotAvailable RiskLevel = "N/A"
)

// Clause categories.
const (
	Indemnification       = "Indemnification"
	LimitationOfLiability = "Limitation of Liability"
	Termination           = "Termination"
	IntellectualProperty  = "Intellectual Property"
	Confidentiality       = "Confidentiality"
	GoverningLaw          = "Governing Law"
	ForceMajeure          = "Force Majeure"
	PaymentTerms          = "Payment Terms"
)

// contextRadius is the number of characters kept either side of a match.
const contextRadius = 100

// ClauseFinding is the result for one clause category.
type ClauseFinding struct {
	Category        string    `json:"category" yaml:"category"`
	Found           bool      `json:"found" yaml:"found"`
	MatchedPatterns []string  `json:"patterns_matched" yaml:"patterns_matched"`
	Evidence        []string  `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	RiskLevel       RiskLevel `json:"risk_level" yaml:"risk_level"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Recommendation  string    `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}

type riskRule struct {
	level RiskLevel
	match func(lowerContext, context string) bool
}

type clauseCategory struct {
	name     string
	patterns []string
	res      []*regexp.Regexp
	// absentRisk is set for categories whose absence is itself a risk.
	absentRisk RiskLevel
	rules      []riskRule
}

func containsAny(words ...string) func(string, string) bool {
	return func(lower, _ string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
}

var lowLiabilityCap = regexp.MustCompile(`limited to .* (less than|equal to) \$?\d{1,6}`)

func newCategory(name string, absent RiskLevel, rules []riskRule, patterns ...string) clauseCategory {
	c := clauseCategory{name: name, patterns: patterns, absentRisk: absent, rules: rules}
	for _, p := range patterns {
		c.res = append(c.res, regexp.MustCompile(`(?i)`+p))
	}
	return c
}

// clauseCatalog lists the categories in report order.
var clauseCatalog = []clauseCategory{
	newCategory(Indemnification, "", []riskRule{
		{RiskHigh, containsAny("unlimited", "all")},
		{RiskMedium, containsAny("cap", "limit")},
		{RiskLow, containsAny("mutual", "both parties")},
	},
		`(indemnify|indemnification|hold harmless|defend against)`,
		`(shall compensate|reimburse .* for any losses)`,
		`(indemnifying party|indemnified party)`,
	),
	newCategory(LimitationOfLiability, RiskHigh, []riskRule{
		{RiskHigh, func(_, ctx string) bool { return lowLiabilityCap.MatchString(ctx) }},
		{RiskLow, containsAny("cap", "limit")},
		{RiskMedium, func(lower, _ string) bool {
			return strings.Contains(lower, "consequential") && strings.Contains(lower, "waive")
		}},
	},
		`(limit(ation)? of liability|liability .* limited|shall not exceed)`,
		`(cap on damages|maximum liability|not be liable for more than)`,
		`(no event shall .* be liable)`,
	),
	newCategory(Termination, "", []riskRule{
		{RiskHigh, containsAny("at will", "any reason")},
		{RiskMedium, containsAny("with cause", "for cause")},
		{RiskLow, containsAny("mutual", "both parties")},
	},
		`(terminat(e|ion) .* convenience|right to terminate)`,
		`(early terminat(e|ion)|cancel .* agreement|prematurely)`,
		`(terminat(e|ion) notice period|notice of terminat(e|ion))`,
	),
	newCategory(IntellectualProperty, "", nil,
		`(intellectual property|IP rights|patent|copyright|trademark)`,
		`(ownership of .* (IP|property|work product|deliverables))`,
		`(transfer of .* ownership|assign .* rights)`,
	),
	newCategory(Confidentiality, "", nil,
		`(confidentiality|confidential information|trade secrets)`,
		`(non-disclosure|not disclose|maintain .* secrecy)`,
		`(protect .* information|confidential treatment)`,
	),
	newCategory(GoverningLaw, "", nil,
		`(govern(ed)? by the laws|jurisdiction|venue)`,
		`(applicable law|disputes .* settled|legal proceedings)`,
		`(forum selection|choice of law|subject to .* laws)`,
	),
	newCategory(ForceMajeure, RiskHigh, nil,
		`(force majeure|act of god|beyond .* control)`,
		`(unforeseen circumstance|unavoidable .* delay)`,
		`(prevent performance|excuse .* performance)`,
	),
	newCategory(PaymentTerms, "", nil,
		`(payment terms|payment .* due|invoice .* payable)`,
		`(net \d+|payment schedule|payment obligation)`,
		`(late payment|interest .* unpaid|fee for .* delay)`,
	),
}

var recommendations = map[string]map[RiskLevel]string{
	Indemnification: {
		RiskHigh:   "Consider negotiating for a cap on indemnification obligations or excluding certain types of damages.",
		RiskMedium: "Review the indemnification provisions for fair allocation of risk between parties.",
		RiskLow:    "Mutual indemnification provides balanced protection. No immediate action needed.",
	},
	LimitationOfLiability: {
		RiskHigh:   "Negotiate for a reasonable liability cap that's proportional to the contract value.",
		RiskMedium: "Consider clarifying which types of damages are excluded and ensure adequate protection.",
		RiskLow:    "Current limitation of liability appears reasonable. Regular review recommended.",
	},
	Termination: {
		RiskHigh:   "Negotiate for more balanced termination rights or longer notice periods.",
		RiskMedium: "Ensure termination for cause definitions are clear and reasonable.",
		RiskLow:    "Termination provisions appear balanced. No immediate action needed.",
	},
	IntellectualProperty: {
		RiskHigh:   "Consider negotiating for a license rather than full transfer of IP rights.",
		RiskMedium: "Clarify the scope of IP rights being transferred or licensed.",
		RiskLow:    "IP provisions appear to provide adequate protection. Regular review recommended.",
	},
	Confidentiality: {
		RiskHigh:   "Strengthen confidentiality provisions with clearer definitions and longer terms.",
		RiskMedium: "Review confidentiality terms to ensure adequate protection of sensitive information.",
		RiskLow:    "Confidentiality provisions appear comprehensive. No immediate action needed.",
	},
	GoverningLaw: {
		RiskHigh:   "Consider negotiating for a more favorable or neutral jurisdiction.",
		RiskMedium: "Evaluate the implications of the current governing law on potential disputes.",
		RiskLow:    "Current jurisdiction appears favorable. No immediate action needed.",
	},
	ForceMajeure: {
		RiskHigh:   "Add a comprehensive force majeure clause to mitigate risks from unforeseeable events.",
		RiskMedium: "Expand the force majeure clause to cover additional scenarios relevant to your business.",
		RiskLow:    "Force majeure provisions appear comprehensive. No immediate action needed.",
	},
	PaymentTerms: {
		RiskHigh:   "Negotiate for more favorable payment terms or longer payment periods.",
		RiskMedium: "Review payment terms to ensure they align with cash flow requirements.",
		RiskLow:    "Payment terms appear favorable. No immediate action needed.",
	},
}

// Categories returns the clause category names in report order.
func Categories() []string {
	names := make([]string, len(clauseCatalog))
	for i, c := range clauseCatalog {
		names[i] = c.name
	}
	return names
}

// IdentifyRiskClauses scans text for every clause category.
func IdentifyRiskClauses(text string) map[string]ClauseFinding {
	out := make(map[string]ClauseFinding, len(clauseCatalog))
	for _, c := range clauseCatalog {
		out[c.name] = c.scan(text)
	}
	return out
}

func (c clauseCategory) scan(text string) ClauseFinding {
	finding := ClauseFinding{Category: c.name, MatchedPatterns: []string{}}

	for i, re := range c.res {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			finding.MatchedPatterns = append(finding.MatchedPatterns, c.patterns[i])
			finding.Evidence = append(finding.Evidence, contextWindow(text, loc[0], loc[1], contextRadius))
		}
	}

	if len(finding.MatchedPatterns) == 0 {
		if c.absentRisk == "" {
			finding.RiskLevel = RiskNotAvailable
			return finding
		}
		finding.RiskLevel = c.absentRisk
		finding.Description = fmt.Sprintf("No %s clause detected, which may present a risk.", c.name)
		finding.Recommendation = fmt.Sprintf("Consider adding a %s clause to mitigate risk.", c.name)
		return finding
	}

	finding.Found = true
	finding.RiskLevel = c.evaluate(finding.Evidence)
	finding.Description = fmt.Sprintf("Found %d instances of %s language.", len(finding.MatchedPatterns), c.name)
	finding.Recommendation = Recommendation(c.name, finding.RiskLevel)
	return finding
}

// evaluate applies the rules in order; a rule fires when any context
// satisfies it. Medium is the default.
func (c clauseCategory) evaluate(contexts []string) RiskLevel {
	lower := make([]string, len(contexts))
	for i, ctx := range contexts {
		lower[i] = strings.ToLower(ctx)
	}
	for _, rule := range c.rules {
		for i := range contexts {
			if rule.match(lower[i], contexts[i]) {
				return rule.level
			}
		}
	}
	return RiskMedium
}

// Recommendation returns the advice for a category at a risk level.
func Recommendation(category string, level RiskLevel) string {
	if r, ok := recommendations[category][level]; ok {
		return r
	}
	return fmt.Sprintf("Review the %s clause and consider consulting with legal counsel regarding the %s risk level.",
		category, strings.ToLower(string(level)))
}

// contextWindow returns text[start:end] widened by radius characters on each side.
func contextWindow(text string, start, end, radius int) string {
	for i := 0; i < radius && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	for i := 0; i < radius && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[start:end]
}
