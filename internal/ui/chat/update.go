// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view component for the TUI.
package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kbchat-tui/internal/backend"
	"github.com/jeranaias/kbchat-tui/internal/feedback"
	"github.com/jeranaias/kbchat-tui/internal/model"
	"github.com/jeranaias/kbchat-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		// A key claimed by a binding must not also reach the components:
		// the Enter that sends a message would otherwise insert a newline
		// into the freshly reset text area.
		if handled {
			return m, tea.Batch(cmds...)
		}

	case ReplyOutcomeMsg:
		if err := m.ctrl.CompleteSend(msg.Outcome); err != nil {
			m.toasts.AddError(replyErrorText(err))
			cmds = append(cmds, components.ToastTickCmd())
		}
		m.selectedID = "" // follow the newest answer
		m.invalidateTranscript()

	case FeedbackOutcomeMsg:
		m.ctrl.CompleteFeedbackSubmit(msg.Outcome)
		if msg.Outcome.Err != nil {
			m.toasts.AddError("Feedback could not be submitted.")
		} else {
			m.toasts.AddSuccess("Thanks for your feedback!")
		}
		m.invalidateTranscript()
		cmds = append(cmds,
			bannerExpireCmd(msg.Outcome.MessageID),
			components.ToastTickCmd())

	case FeedbackBannerExpiredMsg:
		m.ctrl.DismissFeedback(msg.MessageID)
		m.invalidateTranscript()

	case OpenArticleMsg:
		if m.navigator != nil {
			if err := m.navigator.OpenArticle(msg.ArticleID); err != nil {
				m.toasts.AddError("Could not open the article.")
				cmds = append(cmds, components.ToastTickCmd())
			}
		}

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.toasts.AddStatus("Configuration reloaded.")
		m.invalidateTranscript()
		cmds = append(cmds, components.ToastTickCmd())

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		if m.toasts.HasToasts() {
			cmds = append(cmds, components.ToastTickCmd())
		}
	}

	// Spinner only animates while the typing placeholder is present.
	if m.ctrl.Store().HasTyping() {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	// The text area consumes everything not claimed above.
	if _, isKey := msg.(tea.KeyMsg); isKey || m.textarea.Focused() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey routes a key press based on the current input mode. The second
// return reports whether a binding claimed the key.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit, true
	}

	if m.mode == modeFeedback {
		return m.handleFeedbackKey(msg)
	}
	return m.handleChatKey(msg)
}

// handleChatKey handles keys while drafting the next user message.
func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		pending := m.ctrl.BeginSend(m.textarea.Value())
		if pending == nil {
			// Blank input: the Enter is still consumed.
			return nil, true
		}
		m.textarea.Reset()
		m.selectedID = ""
		m.invalidateTranscript()
		return tea.Batch(sendCmd(pending), m.spinner.Tick), true

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.Clear()
		m.selectedID = ""
		m.invalidateTranscript()
		return nil, true

	case key.Matches(msg, m.keys.ThumbsUp):
		return m.openFeedback(model.PolarityPositive), true

	case key.Matches(msg, m.keys.ThumbsDown):
		return m.openFeedback(model.PolarityNegative), true

	case key.Matches(msg, m.keys.SelectPrev):
		m.moveSelection(-1)
		return nil, true

	case key.Matches(msg, m.keys.SelectNext):
		m.moveSelection(+1)
		return nil, true

	case key.Matches(msg, m.keys.OpenLink):
		return m.openSelectedArticle(), true
	}
	return nil, false
}

// handleFeedbackKey handles keys while drafting a feedback comment.
func (m *Model) handleFeedbackKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.CancelFeedback(m.feedbackMsgID)
		m.exitFeedbackMode()
		m.invalidateTranscript()
		return nil, true

	case key.Matches(msg, m.keys.Submit):
		m.ctrl.EditFeedbackComment(m.feedbackMsgID, strings.TrimSpace(m.textarea.Value()))
		sub := m.ctrl.BeginFeedbackSubmit(m.feedbackMsgID)
		m.exitFeedbackMode()
		m.invalidateTranscript()
		if sub == nil {
			return nil, true
		}
		return submitFeedbackCmd(sub), true
	}
	return nil, false
}

// openFeedback starts collecting feedback on the selected assistant message.
func (m *Model) openFeedback(polarity model.Polarity) tea.Cmd {
	sel, ok := m.selected()
	if !ok {
		return nil
	}
	m.ctrl.OpenFeedback(sel.ID, polarity)

	// Only enter comment mode when the transition actually happened.
	updated, _ := m.ctrl.Store().ByID(sel.ID)
	if updated.Feedback.Phase != model.FeedbackCollecting {
		return nil
	}

	m.mode = modeFeedback
	m.feedbackMsgID = sel.ID
	prompt := feedback.PromptFor(polarity)
	m.textarea.Reset()
	m.textarea.Placeholder = prompt.Placeholder
	m.textarea.SetHeight(prompt.Rows)
	m.invalidateTranscript()
	return nil
}

// exitFeedbackMode restores the chat input affordance.
func (m *Model) exitFeedbackMode() {
	m.mode = modeChat
	m.feedbackMsgID = ""
	m.textarea.Reset()
	m.textarea.Placeholder = "Ask a question..."
	m.textarea.SetHeight(2)
}

// openSelectedArticle activates the first resolved link on the selected
// assistant message.
func (m *Model) openSelectedArticle() tea.Cmd {
	sel, ok := m.selected()
	if !ok {
		return nil
	}
	links := components.ExtractArticleLinks(sel.RenderedContent)
	if len(links) == 0 {
		return nil
	}
	return openArticleCmd(links[0].ID)
}

// =============================================================================
// HELPERS
// =============================================================================

// resize propagates a terminal resize to every component.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	m.theme.SetSize(width, height)
	m.msgView.SetWidth(width - 4)
	m.textarea.SetWidth(width - 4)

	viewportHeight := height - m.chromeHeight()
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = viewportHeight
	m.invalidateTranscript()
}

// replyErrorText maps a backend failure to notification text.
func replyErrorText(err error) string {
	var svcErr *backend.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	if errors.Is(err, backend.ErrUnavailable) {
		return "The support service is unreachable. Check your connection and try again."
	}
	return "The support service returned an error. Please try again."
}
