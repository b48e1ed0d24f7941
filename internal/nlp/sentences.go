// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package nlp provides the sentence splitter and named-entity recognizers
// shared by the legal and compliance analyzers.
package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations never end a sentence.
var abbreviations = map[string]struct{}{
	"Mr.": {}, "Mrs.": {}, "Ms.": {}, "Dr.": {},
	"Inc.": {}, "Ltd.": {}, "Co.": {}, "Corp.": {},
	"i.e.": {}, "e.g.": {}, "vs.": {}, "U.S.": {}, "Fig.": {},
}

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace,
// or after the closing quote of `."`, `!"` and `?"`. A terminator that closes one
// of the known abbreviations does not split. Sentences are trimmed and empty
// ones dropped. The result is deterministic for a given input.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	emit := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(text); {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
			continue
		}

		end := i + 1
		if end < len(text) && text[end] == '"' {
			end++
		} else {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if end >= len(text) || !unicode.IsSpace(r) {
				i++
				continue
			}
		}

		if isAbbreviation(lastToken(text[start:end])) {
			i = end
			continue
		}
		emit(end)
		i = end
	}
	emit(len(text))

	return sentences
}

func lastToken(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if idx := strings.LastIndexFunc(s, unicode.IsSpace); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// isAbbreviation ignores opening punctuation such as "(" or a quote.
func isAbbreviation(token string) bool {
	token = strings.TrimLeftFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	_, ok := abbreviations[token]
	return ok
}
