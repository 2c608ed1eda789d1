// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller orchestrates the conversation: it owns the transcript
// store and the session identity, drives the backend and the annotator on
// sends, and routes feedback operations to the workflow.
//
// The controller splits every suspension point into a Begin/Do/Complete
// triple: Begin and Complete are pure state transitions meant for the UI
// event loop, Do is the blocking call meant for a worker goroutine. This is
// the same shape the rendering layer's async commands expect.
package controller

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/kbchat-tui/internal/annotate"
	"github.com/jeranaias/kbchat-tui/internal/feedback"
	"github.com/jeranaias/kbchat-tui/internal/markup"
	"github.com/jeranaias/kbchat-tui/internal/model"
)

// DefaultWelcomeText seeds a fresh conversation when no custom banner is
// configured.
const DefaultWelcomeText = "Hi! Ask me anything about our knowledge base. " +
	"Cited articles become links you can open."

// FallbackText is the fixed assistant reply substituted when the backend
// call fails. The real failure reason goes to the notification surface, not
// the transcript.
const FallbackText = "Sorry, something went wrong while getting your answer. " +
	"Please try again in a moment."

// =============================================================================
// BOUNDARIES
// =============================================================================

// Backend is the conversational service boundary. Satisfied by
// *backend.Client and by test fakes.
type Backend interface {
	Send(ctx context.Context, message, sessionID string) (string, error)
}

// Annotator rewrites resolved citations in a formatted reply. Satisfied by
// *annotate.Annotator and by test fakes.
type Annotator interface {
	Annotate(ctx context.Context, formattedText, rawText string) string
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation session: the store snapshot, the session
// id scoping all external calls, and the collaborators that act on replies.
// Like the store, it is serialized by the UI event loop and holds no locks.
type Controller struct {
	store     model.Store
	sessionID string

	backend   Backend
	annotator Annotator
	workflow  *feedback.Workflow

	welcomeText string
}

// New creates a controller with a fresh session seeded with the welcome
// banner. An empty welcomeText selects the default banner.
func New(backend Backend, annotator Annotator, workflow *feedback.Workflow, welcomeText string) *Controller {
	if welcomeText == "" {
		welcomeText = DefaultWelcomeText
	}
	c := &Controller{
		backend:     backend,
		annotator:   annotator,
		workflow:    workflow,
		welcomeText: welcomeText,
	}
	c.reset()
	return c
}

// Store returns the current transcript snapshot.
func (c *Controller) Store() model.Store {
	return c.store
}

// SessionID returns the current session identity.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Clear replaces the whole transcript with a fresh welcome banner and
// regenerates the session identity. In-flight requests are not cancelled;
// their responses land in the new transcript when they complete (see
// CompleteSend).
func (c *Controller) Clear() {
	c.reset()
}

func (c *Controller) reset() {
	c.sessionID = uuid.NewString()
	c.store = c.store.Reset(
		model.NewWelcomeMessage(c.welcomeText, markup.Format(c.welcomeText)))
}

// =============================================================================
// SENDING
// =============================================================================

// PendingReply is one in-flight backend exchange. It captures the session id
// at issuance so a conversation clear cannot change what gets sent.
type PendingReply struct {
	sessionID string
	rawText   string

	backend   Backend
	annotator Annotator
}

// ReplyOutcome is the result of a backend exchange, delivered to
// CompleteSend. Message is only set on success.
type ReplyOutcome struct {
	SessionID string
	Message   model.Message
	Err       error
}

// BeginSend appends the user's message and the typing placeholder, then
// returns the pending exchange to run off the event loop. Blank input is
// ignored and returns nil.
func (c *Controller) BeginSend(text string) *PendingReply {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.store = c.store.
		Append(model.NewUserMessage(text, markup.Format(text))).
		Append(model.NewTypingMessage())

	return &PendingReply{
		sessionID: c.sessionID,
		rawText:   text,
		backend:   c.backend,
		annotator: c.annotator,
	}
}

// Do performs the blocking backend call and, on success, formats and
// annotates the reply into a ready assistant message. Run it off the event
// loop; feed the outcome back through CompleteSend on the loop.
func (p *PendingReply) Do(ctx context.Context) ReplyOutcome {
	reply, err := p.backend.Send(ctx, p.rawText, p.sessionID)
	if err != nil {
		return ReplyOutcome{SessionID: p.sessionID, Err: err}
	}

	formatted := markup.Format(reply)
	annotated := p.annotator.Annotate(ctx, formatted, reply)
	msg := model.NewAssistantMessage(reply, annotated, annotate.HasReferences(reply))

	return ReplyOutcome{SessionID: p.sessionID, Message: msg}
}

// CompleteSend applies a backend outcome: the typing placeholder is replaced
// by the assistant reply, or by the fixed fallback message on failure. The
// returned error, when non-nil, is the failure to surface as a transient
// notification.
//
// Stale outcomes (issued under a previous session id) are applied to the
// current transcript all the same: the answer was paid for, so it is shown.
func (c *Controller) CompleteSend(out ReplyOutcome) error {
	msg := out.Message
	if out.Err != nil {
		msg = model.NewAssistantMessage(FallbackText, markup.Format(FallbackText), false)
	}
	c.store = c.store.ReplaceTyping(msg)
	return out.Err
}

// =============================================================================
// FEEDBACK PASSTHROUGH
// =============================================================================

// OpenFeedback starts collecting feedback on an assistant message.
func (c *Controller) OpenFeedback(messageID string, polarity model.Polarity) {
	c.store = c.workflow.Open(c.store, messageID, polarity)
}

// EditFeedbackComment replaces the draft comment on a collecting message.
func (c *Controller) EditFeedbackComment(messageID, text string) {
	c.store = c.workflow.EditComment(c.store, messageID, text)
}

// CancelFeedback abandons feedback collection on a message.
func (c *Controller) CancelFeedback(messageID string) {
	c.store = c.workflow.Cancel(c.store, messageID)
}

// BeginFeedbackSubmit starts a feedback submission under the current session
// identity. Returns nil when the message is not submittable.
func (c *Controller) BeginFeedbackSubmit(messageID string) *feedback.Submission {
	var sub *feedback.Submission
	c.store, sub = c.workflow.BeginSubmit(c.store, messageID, c.sessionID)
	return sub
}

// CompleteFeedbackSubmit applies a feedback submission outcome.
func (c *Controller) CompleteFeedbackSubmit(out feedback.Outcome) {
	c.store = c.workflow.CompleteSubmit(c.store, out)
}

// DismissFeedback clears a terminal feedback banner once it has been shown.
func (c *Controller) DismissFeedback(messageID string) {
	c.store = c.workflow.Dismiss(c.store, messageID)
}
