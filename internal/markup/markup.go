// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup converts raw message text into HTML-safe display markup.
//
// The pipeline is deliberately small and fixed: escape first, then a handful
// of inline markdown substitutions. Format is pure but NOT idempotent —
// running it twice double-escapes the entity ampersands of the first pass,
// so callers invoke it exactly once per raw message.
package markup

import (
	"regexp"
	"strings"
)

// =============================================================================
// ESCAPING
// =============================================================================

// escaper escapes the five markup-significant characters. The ampersand rule
// runs first so generated entities are not themselves re-escaped within a
// single pass.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// formatEscaper escapes only the characters that matter before tag emission.
// Quotes stay literal inside formatted prose.
var formatEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape HTML-escapes the five markup-significant characters. Empty input
// yields empty output.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return escaper.Replace(text)
}

// =============================================================================
// INLINE FORMATTING
// =============================================================================

// Substitution order matters: bold runs before italic so a lone `*` pass
// cannot consume the doubled bold markers as nested italics.
var (
	boldStars  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnders = regexp.MustCompile(`__(.+?)__`)
	emStar     = regexp.MustCompile(`\*(.+?)\*`)
	emUnder    = regexp.MustCompile(`_(.+?)_`)
	inlineCode = regexp.MustCompile("`([^`]+)`")
)

// Format converts raw message text into display markup: it escapes `&`, `<`
// and `>`, then applies bold (**x**, __x__), italic (*x*, _x_), inline code
// (`x`) and newline-to-<br> substitutions, in that fixed order. Escaping runs
// before any tag is emitted so raw text can never smuggle markup through.
func Format(text string) string {
	if text == "" {
		return ""
	}
	out := formatEscaper.Replace(text)
	out = boldStars.ReplaceAllString(out, "<strong>$1</strong>")
	out = boldUnders.ReplaceAllString(out, "<strong>$1</strong>")
	out = emStar.ReplaceAllString(out, "<em>$1</em>")
	out = emUnder.ReplaceAllString(out, "<em>$1</em>")
	out = inlineCode.ReplaceAllString(out, "<code>$1</code>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return out
}
