// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package compliance

// Compliance categories.
const (
	FinancialReporting  = "Financial Reporting"
	DataPrivacy         = "Data Privacy"
	InformationSecurity = "Information Security"
	Employment          = "Employment"
	AntiCorruption      = "Anti-Corruption"
)

// Requirement is one regulatory expectation and the phrasings that satisfy it.
type Requirement struct {
	Description    string
	Phrasings      []string
	Recommendation string
}

type category struct {
	name         string
	requirements []Requirement
}

var catalog = []category{
	{FinancialReporting, []Requirement{
		{
			"SOX Section 302 - Disclosure Controls",
			[]string{"disclosure controls and procedures", "effectiveness of disclosure controls", "financial reporting procedures"},
			"Include explicit statements about disclosure controls and procedures evaluation.",
		},
		{
			"SOX Section 404 - Internal Controls",
			[]string{"internal control over financial reporting", "assessment of internal control", "financial control framework"},
			"Add language about maintaining effective internal controls over financial reporting.",
		},
		{
			"GAAP Compliance Statement",
			[]string{"generally accepted accounting principles", "GAAP", "accounting standards"},
			"Include explicit statement of compliance with GAAP or applicable accounting standards.",
		},
	}},
	{DataPrivacy, []Requirement{
		{
			"GDPR Data Processing Provisions",
			[]string{"data processing agreement", "personal data processing", "data controller and processor", "data protection"},
			"Include specific GDPR-compliant data processing terms and roles definition.",
		},
		{
			"CCPA Consumer Rights",
			[]string{"california consumer privacy", "right to delete", "right to access", "opt-out of sale"},
			"Add provisions addressing CCPA consumer rights and business obligations.",
		},
		{
			"Data Breach Notification",
			[]string{"data breach notification", "security incident response", "breach reporting timeline"},
			"Include clear procedures and timelines for data breach notifications.",
		},
	}},
	{InformationSecurity, []Requirement{
		{
			"Security Safeguards Requirements",
			[]string{"information security safeguards", "technical security measures", "administrative security controls"},
			"Add specific security safeguards requirements and standards compliance.",
		},
		{
			"Security Assessment Rights",
			[]string{"security assessment", "security audit rights", "penetration testing", "vulnerability scanning"},
			"Include rights to conduct security assessments or audit security practices.",
		},
		{
			"Security Certification Requirements",
			[]string{"ISO 27001", "SOC 2", "security certification", "security standards compliance"},
			"Specify required security certifications or compliance standards.",
		},
	}},
	{Employment, []Requirement{
		{
			"Non-Discrimination Provisions",
			[]string{"equal opportunity employer", "non-discrimination policy", "workplace equality"},
			"Include comprehensive non-discrimination provisions covering protected classes.",
		},
		{
			"Workplace Safety Requirements",
			[]string{"workplace safety", "health and safety policies", "safe working environment"},
			"Add specific workplace safety requirements and compliance with regulations.",
		},
		{
			"Worker Classification",
			[]string{"employee classification", "independent contractor", "worker status"},
			"Clarify worker classification and ensure compliance with labor laws.",
		},
	}},
	{AntiCorruption, []Requirement{
		{
			"FCPA/Anti-Bribery Provisions",
			[]string{"foreign corrupt practices", "anti-bribery", "corruption prevention", "government officials"},
			"Include specific anti-corruption and anti-bribery provisions and compliance requirements.",
		},
		{
			"Gift Policy",
			[]string{"gift policy", "business courtesies", "gifts and entertainment"},
			"Add clear policies regarding gifts, entertainment, and business courtesies.",
		},
		{
			"Third-Party Due Diligence",
			[]string{"third-party due diligence", "vendor vetting", "business partner screening"},
			"Include requirements for conducting due diligence on third parties.",
		},
	}},
}

// Categories returns the compliance category names in report order.
func Categories() []string {
	names := make([]string, len(catalog))
	for i, c := range catalog {
		names[i] = c.name
	}
	return names
}

// Requirements returns the requirements of a category, or nil if unknown.
func Requirements(name string) []Requirement {
	for _, c := range catalog {
		if c.name == name {
			return c.requirements
		}
	}
	return nil
}
