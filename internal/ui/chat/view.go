// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/kbchat-tui/internal/model"
	"github.com/jeranaias/kbchat-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	m.syncTranscript()

	sections := []string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	}
	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.toasts.HasToasts() {
		if stack := components.RenderToastStack(m.toasts.GetToasts(), m.width); stack != "" {
			return m.overlayToasts(view, stack)
		}
	}
	return view
}

// =============================================================================
// TOAST OVERLAY
// =============================================================================

// overlayToasts composites the toast stack into the bottom-right corner of
// the frame. Only the cells under a toast are replaced; the header,
// transcript and input stay visible around the notification.
func (m *Model) overlayToasts(frame, stack string) string {
	frameLines := strings.Split(frame, "\n")
	stackLines := strings.Split(stack, "\n")

	// Anchor the stack two rows above the bottom, clear of the status bar.
	startRow := len(frameLines) - len(stackLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	for i, toastLine := range stackLines {
		row := startRow + i
		if row >= len(frameLines) {
			break
		}
		toastWidth := lipgloss.Width(toastLine)
		if toastWidth == 0 {
			continue
		}

		avail := m.width - toastWidth - 2
		if avail < 0 {
			avail = 0
		}
		base := frameLines[row]
		if w := lipgloss.Width(base); w > avail {
			base = truncateToWidth(base, avail)
		} else if w < avail {
			base += strings.Repeat(" ", avail-w)
		}
		frameLines[row] = base + toastLine
	}
	return strings.Join(frameLines, "\n")
}

// truncateToWidth cuts a line to the given display width.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	current := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if current+w > width {
			break
		}
		b.WriteRune(r)
		current += w
	}
	return b.String()
}

// chromeHeight is the vertical space consumed by everything except the
// transcript viewport.
func (m *Model) chromeHeight() int {
	// header (3) + input area (textarea height + border 2) + status bar (1)
	return 3 + m.textarea.Height() + 2 + 1
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// syncTranscript re-renders the transcript into the viewport when the store
// snapshot changed. While the typing placeholder is visible the transcript
// renders every frame so the spinner animates.
func (m *Model) syncTranscript() {
	store := m.ctrl.Store()
	if m.cacheValid && sameSnapshot(store, m.cachedStore) && !store.HasTyping() {
		return
	}

	sel, hasSel := m.selected()

	var b strings.Builder
	for i, msg := range store.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.IsTyping {
			b.WriteString(m.spinner.View() + " " + m.theme.ThinkingText.Render("Looking that up..."))
			continue
		}

		rendered := m.msgView.Render(msg, m.cfg.UI.ShowTimestamps)
		if hasSel && msg.ID == sel.ID {
			rendered = m.theme.SelectedMarker.Render("> ") + rendered
		}
		b.WriteString(rendered)

		if badge := m.msgView.RenderFeedbackBadge(msg); badge != "" {
			b.WriteString("\n" + badge)
		}
	}

	m.cachedStore = store
	m.cachedContent = b.String()
	m.cacheValid = true

	m.viewport.SetContent(m.cachedContent)
	m.viewport.GotoBottom()
}

// sameSnapshot reports whether two snapshots share a backing transcript.
// Copy-on-write keeps slice identity for unchanged stores, so this is the
// cheap "did anything change" test.
func sameSnapshot(a, b model.Store) bool {
	am, bm := a.Messages(), b.Messages()
	if len(am) != len(bm) {
		return false
	}
	return len(am) == 0 || &am[0] == &bm[0]
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("kbchat")
	subtitle := m.theme.HeaderSubtitle.Render("knowledge-base support chat")
	return m.theme.Header.Width(m.width - 2).Render(title + "  " + subtitle)
}

func (m *Model) renderInput() string {
	var label string
	if m.mode == modeFeedback {
		if msg, ok := m.ctrl.Store().ByID(m.feedbackMsgID); ok && msg.Feedback.Polarity.Valid() {
			label = m.theme.InputPrompt.Render("feedback (" + string(msg.Feedback.Polarity) + ")")
		} else {
			label = m.theme.InputPrompt.Render("feedback")
		}
	} else {
		label = m.theme.InputPrompt.Render("message")
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(
		label + "\n" + m.textarea.View())
}

func (m *Model) renderStatusBar() string {
	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(help.Key)+" "+m.theme.ShortcutDesc.Render(help.Desc))
	}

	left := strings.Join(parts, "  ")
	right := ""
	if sel, ok := m.selected(); ok && sel.HasArticleLinks {
		right = m.theme.ShortcutDesc.Render("articles available ")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
