// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface:
//   - Reply: completion of a conversational-backend exchange
//   - Feedback: completion of a feedback submission
//   - Navigation: article link activation
//   - Config: live configuration reloads
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"github.com/jeranaias/kbchat-tui/internal/config"
	"github.com/jeranaias/kbchat-tui/internal/controller"
	"github.com/jeranaias/kbchat-tui/internal/feedback"
)

// =============================================================================
// REPLY MESSAGES
// =============================================================================

// ReplyOutcomeMsg delivers the outcome of a backend exchange started by
// BeginSend. Carried back to the event loop by the async command.
type ReplyOutcomeMsg struct {
	Outcome controller.ReplyOutcome
}

// =============================================================================
// FEEDBACK MESSAGES
// =============================================================================

// FeedbackOutcomeMsg delivers the outcome of a feedback submission.
type FeedbackOutcomeMsg struct {
	Outcome feedback.Outcome
}

// FeedbackBannerExpiredMsg clears a terminal feedback banner after its
// display window.
type FeedbackBannerExpiredMsg struct {
	MessageID string
}

// =============================================================================
// NAVIGATION MESSAGES
// =============================================================================

// OpenArticleMsg requests opening a knowledge article. Emitted on link
// activation; the host (Navigator) performs the actual navigation.
type OpenArticleMsg struct {
	ArticleID string
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a freshly reloaded configuration. Sent from the
// config watcher goroutine via Program.Send.
type ConfigReloadedMsg struct {
	Config *config.Config
}
