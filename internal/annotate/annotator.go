// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotate

import (
	"context"
	"log"
)

// =============================================================================
// RESOLVER BOUNDARY
// =============================================================================

// Resolver maps a batch of 9-digit article numbers to opaque article
// identifiers. Numbers the service does not know are simply absent from the
// returned map. Implementations live outside this package (HTTP client,
// cache, test fakes).
type Resolver interface {
	Resolve(ctx context.Context, articleNumbers []string) (map[string]string, error)
}

// =============================================================================
// ANNOTATOR
// =============================================================================

// Annotator rewrites recognized citations into interactive links once their
// targets resolve. Resolution failures are never fatal: the formatted text is
// returned unchanged and the reply still displays.
type Annotator struct {
	resolver Resolver
}

// New creates an annotator backed by the given resolver.
func New(resolver Resolver) *Annotator {
	return &Annotator{resolver: resolver}
}

// Annotate scans rawText for citations, resolves the whole batch with a
// single resolver call, and rewrites each resolved occurrence in
// formattedText into a link token. Unresolved citations stay literal. When
// rawText carries no citations the resolver is not called at all.
func (a *Annotator) Annotate(ctx context.Context, formattedText, rawText string) string {
	keys := ExtractKeys(rawText)
	if len(keys) == 0 {
		return formattedText
	}

	resolved, err := a.resolver.Resolve(ctx, keys)
	if err != nil {
		// Degraded resolution: citations stay plain text.
		log.Printf("article resolution unavailable: %v", err)
		return formattedText
	}
	if len(resolved) == 0 {
		return formattedText
	}

	return rewrite(formattedText, resolved)
}

// =============================================================================
// SPAN REWRITING
// =============================================================================

// LinkToken renders the inline link for a resolved citation. The opaque
// article id rides in a data attribute; the host activates navigation, the
// widget never navigates itself.
func LinkToken(articleID, articleNumber string) string {
	return `<a href="#" class="kb-article-link" data-article-id="` +
		articleID + `">` + articleNumber + `</a>`
}

// rewrite walks the pattern table in fixed form order and replaces every
// resolved article number inside each matched span with a link token,
// preserving the surrounding literal text (parentheses, labels, separators,
// unresolved numbers). Earlier passes insert tags that break the literal
// context later patterns require, so a span is never rewritten twice; the
// legacy list form additionally skips spans claimed by the specific forms.
func rewrite(formattedText string, resolved map[string]string) string {
	out := formattedText
	for _, p := range patterns {
		form := p.form
		out = p.re.ReplaceAllStringFunc(out, func(span string) string {
			if form == FormParenList && claimedBySpecificForm(span) {
				return span
			}
			return articleKey.ReplaceAllStringFunc(span, func(key string) string {
				id, ok := resolved[key]
				if !ok {
					return key
				}
				return LinkToken(id, key)
			})
		})
	}
	return out
}
