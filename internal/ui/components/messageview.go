// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/kbchat-tui/internal/model"
	"github.com/jeranaias/kbchat-tui/internal/ui/styles"
)

// =============================================================================
// ARTICLE LINKS
// =============================================================================

// ArticleLink is one resolved citation extracted from a message's rendered
// markup. The ID is the opaque identifier the host navigates with; the
// Number is the displayed 9-digit article number.
type ArticleLink struct {
	ID     string
	Number string
}

// linkToken matches the inline link markup produced by annotation.
var linkToken = regexp.MustCompile(
	`<a href="#" class="kb-article-link" data-article-id="([^"]+)">([0-9]{9})</a>`)

// ExtractArticleLinks pulls the resolved article links out of rendered
// markup, in order of appearance, deduplicated by article id.
func ExtractArticleLinks(rendered string) []ArticleLink {
	matches := linkToken.FindAllStringSubmatch(rendered, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	links := make([]ArticleLink, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		links = append(links, ArticleLink{ID: m[1], Number: m[2]})
	}
	return links
}

// =============================================================================
// MESSAGE VIEW
// =============================================================================

// MessageView renders transcript messages for the terminal.
//
// The rendered markup on a message is authoritative for WHAT is displayed
// (which citations became links), but terminals do not speak HTML: body text
// is rendered from the raw content via glamour, and resolved links are
// listed beneath the body with selection numbers for keyboard activation.
type MessageView struct {
	theme *styles.Theme
	width int

	rendererMu sync.Mutex
	renderer   *glamour.TermRenderer
}

// NewMessageView creates a message view for the given theme.
func NewMessageView(theme *styles.Theme) *MessageView {
	return &MessageView{theme: theme, width: 80}
}

// SetWidth updates the render width. The markdown renderer is rebuilt lazily
// on the next render.
func (v *MessageView) SetWidth(width int) {
	if width == v.width {
		return
	}
	v.rendererMu.Lock()
	v.width = width
	v.renderer = nil
	v.rendererMu.Unlock()
}

// Render renders one message. showTimestamps controls the meta line.
func (v *MessageView) Render(msg model.Message, showTimestamps bool) string {
	var meta string
	if showTimestamps {
		meta = v.theme.MessageMeta.Render(
			fmt.Sprintf("%s  %s", msg.Role.DisplayName(), msg.Timestamp.Format("15:04")))
	} else {
		meta = v.theme.MessageMeta.Render(msg.Role.DisplayName())
	}

	switch msg.Role {
	case model.RoleUser:
		body := v.theme.UserBubble.Render(msg.RawContent)
		return lipgloss.JoinVertical(lipgloss.Right, meta, body)

	case model.RoleSystem:
		return lipgloss.JoinVertical(lipgloss.Center, meta, v.theme.SystemBubble.Render(msg.RawContent))

	default:
		return lipgloss.JoinVertical(lipgloss.Left, meta, v.renderAssistant(msg))
	}
}

// renderAssistant renders an assistant body: markdown prose, highlighted
// code fences, and the resolved article links as a numbered list.
func (v *MessageView) renderAssistant(msg model.Message) string {
	body := v.renderMarkdown(msg.RawContent)
	body = ParseCodeBlocks(body, v.width-8)

	sections := []string{v.theme.AssistantBubble.Render(strings.TrimRight(body, "\n"))}

	if links := ExtractArticleLinks(msg.RenderedContent); len(links) > 0 {
		var b strings.Builder
		b.WriteString(v.theme.MessageMeta.Render("Referenced articles:"))
		markerWidth := runewidth.StringWidth(fmt.Sprintf("[%d]", len(links)))
		for i, link := range links {
			marker := PadLabel(fmt.Sprintf("[%d]", i+1), markerWidth)
			b.WriteString("\n")
			b.WriteString("  " + marker + " " + v.theme.ArticleLink.Render(link.Number))
		}
		sections = append(sections, v.theme.ArticleLinkList.Render(b.String()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMarkdown renders prose through glamour, degrading to the plain text
// on renderer failure.
func (v *MessageView) renderMarkdown(raw string) string {
	v.rendererMu.Lock()
	defer v.rendererMu.Unlock()

	if v.renderer == nil {
		wrap := v.width - 12
		if wrap < 30 {
			wrap = 30
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return raw
		}
		v.renderer = r
	}

	out, err := v.renderer.Render(raw)
	if err != nil {
		return raw
	}
	return out
}

// =============================================================================
// FEEDBACK BADGES
// =============================================================================

// RenderFeedbackBadge renders the per-message feedback state shown under an
// assistant message. Returns "" for phase none.
func (v *MessageView) RenderFeedbackBadge(msg model.Message) string {
	fb := msg.Feedback
	switch fb.Phase {
	case model.FeedbackCollecting:
		label := "rate this answer"
		if fb.Polarity.Valid() {
			label = string(fb.Polarity) + " — add a comment, enter to submit, esc to cancel"
		}
		return v.theme.FeedbackPrompt.Render(label)
	case model.FeedbackSubmitting:
		return v.theme.MessageMeta.Render("submitting feedback...")
	case model.FeedbackResolved:
		return v.theme.FeedbackSubmitted.Render(styles.StatusIndicators.Success + " feedback sent")
	case model.FeedbackFailed:
		return v.theme.FeedbackFailed.Render(styles.StatusIndicators.Error + " feedback failed")
	default:
		return ""
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// PadLabel pads a label to a display width, unicode-aware.
func PadLabel(label string, width int) string {
	gap := width - runewidth.StringWidth(label)
	if gap <= 0 {
		return label
	}
	return label + strings.Repeat(" ", gap)
}
