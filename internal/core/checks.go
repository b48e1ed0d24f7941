// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Analyses that can be requested.
const (
	CheckFinancial  = "financial"
	CheckLegal      = "legal"
	CheckCompliance = "compliance"
)

// ErrUnknownCheck is returned for check names outside the known set.
var ErrUnknownCheck = errors.New("unknown check")

// focusAliases are the analysis-focus names accepted in place of check lists.
var focusAliases = map[string][]string{
	"comprehensive":    {CheckFinancial, CheckLegal, CheckCompliance},
	"financial-focus":  {CheckFinancial},
	"legal-focus":      {CheckLegal},
	"compliance-focus": {CheckCompliance},
}

// ParseChecksToRun converts check names into an enabled-checks map.
// An empty slice or ["all"] enables every check. Entries may be comma-separated.
func ParseChecksToRun(checks []string) (map[string]bool, error) {
	result := map[string]bool{
		CheckFinancial:  false,
		CheckLegal:      false,
		CheckCompliance: false,
	}

	var names []string
	for _, c := range checks {
		for _, part := range strings.Split(c, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				names = append(names, part)
			}
		}
	}

	if len(names) == 0 {
		names = []string{"all"}
	}

	for _, name := range names {
		if name == "all" {
			for key := range result {
				result[key] = true
			}
			continue
		}
		if alias, ok := focusAliases[name]; ok {
			for _, key := range alias {
				result[key] = true
			}
			continue
		}
		if _, ok := result[name]; !ok {
			return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownCheck, name, strings.Join(CheckNames(), ", "))
		}
		result[name] = true
	}

	return result, nil
}

// CheckNames lists every accepted check and focus name.
func CheckNames() []string {
	names := []string{"all", CheckFinancial, CheckLegal, CheckCompliance}
	aliases := make([]string, 0, len(focusAliases))
	for name := range focusAliases {
		aliases = append(aliases, name)
	}
	sort.Strings(aliases)
	return append(names, aliases...)
}
