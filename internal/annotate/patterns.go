// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package annotate scans assistant replies for knowledge-article citations
// and rewrites resolved citations into interactive links.
package annotate

import (
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// CITATION FORMS
// =============================================================================

// Form identifies one of the citation surface forms. The numeric order is
// also the rewrite order.
type Form int

const (
	// FormParenSingle matches "(Article NNNNNNNNN)".
	FormParenSingle Form = iota
	// FormParenList matches "(Article NNNNNNNNN, NNNNNNNNN, ...)" — the
	// legacy catch-all list form.
	FormParenList
	// FormInline matches "Article: NNNNNNNNN" without parentheses.
	FormInline
	// FormNumbersList matches "(Article Numbers: NNNNNNNNN, NNNNNNNNN, ...)".
	FormNumbersList
	// FormNumberSingle matches "(Article Number: NNNNNNNNN)".
	FormNumberSingle
)

// articleKey matches one 9-digit article number. Article numbers survive
// HTML escaping untouched (digits, parentheses, colons and commas are never
// escaped), so the same patterns match raw and formatted text identically.
var articleKey = regexp.MustCompile(`[0-9]{9}`)

// pattern pairs a citation form with its matcher. A single ordered table
// drives both key extraction and span rewriting so the two can never drift
// apart; adding a new citation form means adding one row here.
type pattern struct {
	form Form
	re   *regexp.Regexp
}

// patterns is the ordered list of citation pattern descriptors.
var patterns = []pattern{
	{FormParenSingle, regexp.MustCompile(`\(Article ([0-9]{9})\)`)},
	{FormParenList, regexp.MustCompile(`\(Article ([0-9]{9}(?:[,\s]+[0-9]{9})*)\)`)},
	{FormInline, regexp.MustCompile(`Article:\s*([0-9]{9})`)},
	{FormNumbersList, regexp.MustCompile(`\(Article Numbers:\s*([0-9]{9}(?:[,\s]+[0-9]{9})*)\)`)},
	{FormNumberSingle, regexp.MustCompile(`\(Article Number:\s*([0-9]{9})\)`)},
}

// specificMarkers are the literal prefixes of the more specific forms 4 and
// 5. The legacy list form must skip any span carrying one of these so it
// never re-wraps text the specific passes already rewrote.
var specificMarkers = []string{"Article Numbers:", "Article Number:"}

// claimedBySpecificForm reports whether a legacy-form span overlaps text
// belonging to forms 4/5.
func claimedBySpecificForm(span string) bool {
	for _, marker := range specificMarkers {
		if strings.Contains(span, marker) {
			return true
		}
	}
	return false
}

// =============================================================================
// EXTRACTION
// =============================================================================

// ExtractKeys scans text with every citation pattern and returns the
// deduplicated set of 9-digit article numbers, sorted for determinism. A key
// cited in several forms appears once.
func ExtractKeys(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]struct{})
	for _, p := range patterns {
		for _, match := range p.re.FindAllStringSubmatch(text, -1) {
			for _, key := range articleKey.FindAllString(match[1], -1) {
				seen[key] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasReferences reports whether the text cites a knowledge article in one of
// the specific forms (1, 3, 4, 5). The bare legacy list form is excluded: it
// exists only to catch older reply shapes during rewriting and should not by
// itself flag a message for link activation.
func HasReferences(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if p.form == FormParenList {
			continue
		}
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}
