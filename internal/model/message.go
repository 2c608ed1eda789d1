// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation transcript.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// RESERVED MESSAGE IDENTITIES
// =============================================================================

const (
	// TypingID is the reserved identity of the typing placeholder. At most
	// one message with this identity may exist in a store at any time.
	TypingID = "msg_typing"

	// WelcomeID is the fixed identity of the welcome banner that seeds a
	// fresh (or cleared) conversation.
	WelcomeID = "msg_welcome"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the conversation transcript.
//
// Messages are plain values: the store copies them on every mutation, so a
// held snapshot never changes underneath its observer.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// RawContent is the original unformatted text, retained for copy and
	// resubmission. Empty for the typing placeholder.
	RawContent string `json:"raw_content"`

	// RenderedContent is the HTML-safe markup derived from RawContent. It is
	// the only content ever displayed and is never recomputed after the
	// message is created.
	RenderedContent string `json:"rendered_content"`

	// IsTyping is true only for the typing placeholder.
	IsTyping bool `json:"is_typing,omitempty"`

	// HasArticleLinks is true if the assistant reply cites at least one
	// knowledge article, independent of whether resolution succeeded.
	HasArticleLinks bool `json:"has_article_links,omitempty"`

	// Feedback is the per-message feedback sub-record. Only assistant
	// messages ever leave the zero (none) phase.
	Feedback Feedback `json:"feedback,omitempty"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(raw, rendered string) Message {
	return Message{
		ID:              generateID(),
		Role:            RoleUser,
		Timestamp:       time.Now(),
		RawContent:      raw,
		RenderedContent: rendered,
	}
}

// NewAssistantMessage creates an assistant message with a generated ID.
func NewAssistantMessage(raw, rendered string, hasArticleLinks bool) Message {
	return Message{
		ID:              generateID(),
		Role:            RoleAssistant,
		Timestamp:       time.Now(),
		RawContent:      raw,
		RenderedContent: rendered,
		HasArticleLinks: hasArticleLinks,
	}
}

// NewSystemMessage creates a system message with a generated ID.
func NewSystemMessage(raw, rendered string) Message {
	return Message{
		ID:              generateID(),
		Role:            RoleSystem,
		Timestamp:       time.Now(),
		RawContent:      raw,
		RenderedContent: rendered,
	}
}

// NewWelcomeMessage creates the conversation banner with its fixed identity.
func NewWelcomeMessage(raw, rendered string) Message {
	msg := NewSystemMessage(raw, rendered)
	msg.ID = WelcomeID
	return msg
}

// NewTypingMessage creates the typing placeholder. It carries the reserved
// sentinel identity and no content.
func NewTypingMessage() Message {
	return Message{
		ID:        TypingID,
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		IsTyping:  true,
	}
}

// Preview returns a truncated preview of the raw content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.RawContent)
	if len(runes) <= maxLen {
		return m.RawContent
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no raw content.
func (m Message) IsEmpty() bool {
	return len(m.RawContent) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID. IDs are never reused within a
// session; the typing placeholder and welcome banner use reserved identities
// instead.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
