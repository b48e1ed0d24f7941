// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package compliance

import "regexp"

var regulations = []struct {
	name string
	re   *regexp.Regexp
}{
	{"GDPR", regexp.MustCompile(`(?i)GDPR|General Data Protection Regulation`)},
	{"CCPA", regexp.MustCompile(`(?i)CCPA|California Consumer Privacy Act`)},
	{"HIPAA", regexp.MustCompile(`(?i)HIPAA|Health Insurance Portability`)},
	{"SOX", regexp.MustCompile(`(?i)SOX|Sarbanes-Oxley|Sarbanes Oxley`)},
	{"PCI DSS", regexp.MustCompile(`(?i)PCI DSS|Payment Card Industry`)},
	{"FCPA", regexp.MustCompile(`(?i)FCPA|Foreign Corrupt Practices Act`)},
}

// RegulatoryReferences counts mentions of well-known regulations.
// Regulations that are never mentioned are omitted.
func RegulatoryReferences(text string) map[string]int {
	refs := make(map[string]int)
	for _, r := range regulations {
		if n := len(r.re.FindAllStringIndex(text, -1)); n > 0 {
			refs[r.name] = n
		}
	}
	return refs
}
