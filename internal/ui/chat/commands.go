// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation view component for the TUI.
//
// This file defines the asynchronous commands the chat widget runs off the
// event loop. Each command captures everything it needs at creation time so
// later model mutations (including conversation clears) cannot race it.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/kbchat-tui/internal/controller"
	"github.com/jeranaias/kbchat-tui/internal/feedback"
)

// feedbackBannerWindow is how long a terminal feedback badge stays visible
// before the sub-record resets to none.
const feedbackBannerWindow = 3 * time.Second

// sendCmd runs a pending backend exchange and delivers its outcome.
func sendCmd(pending *controller.PendingReply) tea.Cmd {
	return func() tea.Msg {
		return ReplyOutcomeMsg{Outcome: pending.Do(context.Background())}
	}
}

// submitFeedbackCmd runs a pending feedback submission and delivers its
// outcome.
func submitFeedbackCmd(sub *feedback.Submission) tea.Cmd {
	return func() tea.Msg {
		return FeedbackOutcomeMsg{Outcome: sub.Do(context.Background())}
	}
}

// bannerExpireCmd schedules clearing a terminal feedback badge.
func bannerExpireCmd(messageID string) tea.Cmd {
	id := messageID
	return tea.Tick(feedbackBannerWindow, func(time.Time) tea.Msg {
		return FeedbackBannerExpiredMsg{MessageID: id}
	})
}

// openArticleCmd asks the navigator to open an article.
func openArticleCmd(articleID string) tea.Cmd {
	id := articleID
	return func() tea.Msg {
		return OpenArticleMsg{ArticleID: id}
	}
}
