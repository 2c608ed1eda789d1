// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kbchat-tui/internal/config"
	"github.com/jeranaias/kbchat-tui/internal/controller"
	"github.com/jeranaias/kbchat-tui/internal/model"
	"github.com/jeranaias/kbchat-tui/internal/ui/components"
	"github.com/jeranaias/kbchat-tui/internal/ui/styles"
)

// =============================================================================
// NAVIGATOR BOUNDARY
// =============================================================================

// Navigator opens knowledge articles outside the widget. The widget only
// emits the opaque article identifier on link activation; it never navigates
// itself.
type Navigator interface {
	OpenArticle(articleID string) error
}

// =============================================================================
// INPUT MODES
// =============================================================================

// inputMode selects what the text area is editing.
type inputMode int

const (
	// modeChat: the text area drafts the next user message.
	modeChat inputMode = iota
	// modeFeedback: the text area drafts a feedback comment for
	// feedbackMsgID.
	modeFeedback
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the conversation widget.
type Model struct {
	ctrl      *controller.Controller
	navigator Navigator
	cfg       *config.Config

	keys  KeyMap
	theme *styles.Theme

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	toasts   *components.ToastManager
	msgView  *components.MessageView

	mode          inputMode
	feedbackMsgID string

	// selectedID is the assistant message targeted by feedback and link
	// keys; follows the newest assistant reply unless moved.
	selectedID string

	width  int
	height int
	ready  bool

	// transcript render cache, invalidated on store change and resize
	cachedStore   model.Store
	cachedContent string
	cacheValid    bool
}

// New creates the conversation widget.
func New(ctrl *controller.Controller, navigator Navigator, cfg *config.Config) *Model {
	theme := styles.NewTheme()

	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Prompt = "> "
	ta.CharLimit = 4000
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Model{
		ctrl:      ctrl,
		navigator: navigator,
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		theme:     theme,
		textarea:  ta,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		toasts:    components.NewToastManager(),
		msgView:   components.NewMessageView(theme),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// =============================================================================
// SELECTION HELPERS
// =============================================================================

// selected returns the currently targeted assistant message, defaulting to
// the newest one.
func (m *Model) selected() (model.Message, bool) {
	store := m.ctrl.Store()
	if m.selectedID != "" {
		if msg, ok := store.ByID(m.selectedID); ok && msg.Role == model.RoleAssistant && !msg.IsTyping {
			return msg, true
		}
		m.selectedID = ""
	}
	return store.LastAssistant()
}

// moveSelection shifts the selection to the previous or next assistant
// message in transcript order.
func (m *Model) moveSelection(delta int) {
	msgs := m.ctrl.Store().Messages()

	var candidates []string
	current := -1
	for _, msg := range msgs {
		if msg.Role != model.RoleAssistant || msg.IsTyping {
			continue
		}
		candidates = append(candidates, msg.ID)
	}
	if len(candidates) == 0 {
		return
	}

	sel, ok := m.selected()
	if ok {
		for i, id := range candidates {
			if id == sel.ID {
				current = i
				break
			}
		}
	}
	if current < 0 {
		current = len(candidates) - 1
	}

	next := current + delta
	if next < 0 {
		next = 0
	}
	if next >= len(candidates) {
		next = len(candidates) - 1
	}
	m.selectedID = candidates[next]
	m.invalidateTranscript()
}

// invalidateTranscript forces a transcript re-render on the next view.
func (m *Model) invalidateTranscript() {
	m.cacheValid = false
}
