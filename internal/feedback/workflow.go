// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feedback

import (
	"context"
	"fmt"
	"log"

	"github.com/jeranaias/kbchat-tui/internal/markup"
	"github.com/jeranaias/kbchat-tui/internal/model"
)

// =============================================================================
// PRESENTATION HINTS
// =============================================================================

// Prompt is the comment-input presentation hint for a polarity. Negative
// feedback gets a larger affordance and a more directive prompt; this is a
// hint for the rendering host, not a structural rule.
type Prompt struct {
	Placeholder string
	Rows        int
}

// PromptFor returns the comment-input hint for the given polarity.
func PromptFor(polarity model.Polarity) Prompt {
	if polarity == model.PolarityNegative {
		return Prompt{
			Placeholder: "What was wrong or missing? The more detail the better.",
			Rows:        4,
		}
	}
	return Prompt{
		Placeholder: "Anything you'd like to add? (optional)",
		Rows:        2,
	}
}

// =============================================================================
// WORKFLOW
// =============================================================================

// Workflow drives the per-message feedback state machine:
//
//	none → collecting → submitting → {resolved | failed} → none
//
// with collecting → none via cancel. All methods take and return store
// snapshots; like the store itself they rely on the UI event loop for
// serialization and use no locking.
type Workflow struct {
	service Submitter

	// pending tracks message ids with an outstanding submission so a message
	// can never have two submissions in flight.
	pending map[string]bool
}

// NewWorkflow creates a workflow submitting through the given service.
func NewWorkflow(service Submitter) *Workflow {
	return &Workflow{
		service: service,
		pending: make(map[string]bool),
	}
}

// Open transitions a message from none to collecting and seeds the polarity.
// Invalid targets (unknown id, non-assistant message, wrong phase, bad
// polarity) are ignored.
func (w *Workflow) Open(s model.Store, messageID string, polarity model.Polarity) model.Store {
	if !polarity.Valid() {
		return s
	}
	return s.UpdateByID(messageID, func(m model.Message) model.Message {
		if m.Role != model.RoleAssistant || m.IsTyping || m.Feedback.Phase != model.FeedbackNone {
			return m
		}
		m.Feedback = m.Feedback.Collecting(polarity)
		return m
	})
}

// EditComment replaces the draft comment. Allowed only while collecting;
// a no-op otherwise.
func (w *Workflow) EditComment(s model.Store, messageID, text string) model.Store {
	return s.UpdateByID(messageID, func(m model.Message) model.Message {
		if m.Feedback.Phase != model.FeedbackCollecting {
			return m
		}
		m.Feedback = m.Feedback.WithComment(text)
		return m
	})
}

// Cancel returns a collecting message to none, clearing polarity and comment.
func (w *Workflow) Cancel(s model.Store, messageID string) model.Store {
	return s.UpdateByID(messageID, func(m model.Message) model.Message {
		if m.Feedback.Phase != model.FeedbackCollecting {
			return m
		}
		m.Feedback = m.Feedback.Cleared()
		return m
	})
}

// Dismiss returns a terminal (resolved/failed) message to none after its
// outcome banner has been displayed.
func (w *Workflow) Dismiss(s model.Store, messageID string) model.Store {
	return s.UpdateByID(messageID, func(m model.Message) model.Message {
		if !m.Feedback.Phase.Terminal() {
			return m
		}
		m.Feedback = m.Feedback.Cleared()
		return m
	})
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submission is one in-flight feedback submission. It captures everything at
// begin time (including the session id) so a conversation clear cannot
// change what gets sent.
type Submission struct {
	MessageID string

	req     Request
	service Submitter
}

// Outcome is the result of a submission, delivered back to CompleteSubmit.
type Outcome struct {
	MessageID string
	Request   Request
	Response  Response
	Err       error
}

// BeginSubmit transitions a collecting message to submitting and returns the
// in-flight submission. Requires a set polarity and no outstanding submission
// for the message; otherwise the call is ignored (logged, not an error) and
// a nil submission is returned.
func (w *Workflow) BeginSubmit(s model.Store, messageID, sessionID string) (model.Store, *Submission) {
	msg, ok := s.ByID(messageID)
	if !ok || msg.Feedback.Phase != model.FeedbackCollecting || !msg.Feedback.Polarity.Valid() {
		log.Printf("feedback submit ignored for %s: not collecting", messageID)
		return s, nil
	}
	if w.pending[messageID] {
		log.Printf("feedback submit ignored for %s: submission already in flight", messageID)
		return s, nil
	}

	w.pending[messageID] = true
	s = s.UpdateByID(messageID, func(m model.Message) model.Message {
		m.Feedback = m.Feedback.Submitting()
		return m
	})

	return s, &Submission{
		MessageID: messageID,
		req: Request{
			MessageID:    messageID,
			UserFeedback: string(msg.Feedback.Polarity),
			SessionID:    sessionID,
			Comment:      msg.Feedback.Comment,
		},
		service: w.service,
	}
}

// Do performs the blocking service call. Run it off the event loop; feed the
// outcome back through CompleteSubmit on the loop.
func (sub *Submission) Do(ctx context.Context) Outcome {
	resp, err := sub.service.Submit(ctx, sub.req)
	if err == nil && !resp.Success {
		// Service-reported failure: equivalent to a transport failure for
		// state-machine purposes, but keeps the service's reason.
		err = fmt.Errorf("feedback rejected: %s", failureReason(resp, nil))
	}
	return Outcome{
		MessageID: sub.MessageID,
		Request:   sub.req,
		Response:  resp,
		Err:       err,
	}
}

// CompleteSubmit applies a submission outcome: the message moves to its
// terminal phase with transient fields cleared, and a system message
// describing the outcome is appended to the transcript.
func (w *Workflow) CompleteSubmit(s model.Store, out Outcome) model.Store {
	delete(w.pending, out.MessageID)

	terminal := model.FeedbackResolved
	if out.Err != nil {
		terminal = model.FeedbackFailed
	}

	s = s.UpdateByID(out.MessageID, func(m model.Message) model.Message {
		if m.Feedback.Phase != model.FeedbackSubmitting {
			return m
		}
		m.Feedback = m.Feedback.Terminal(terminal)
		return m
	})

	raw := w.outcomeText(out)
	return s.Append(model.NewSystemMessage(raw, markup.Format(raw)))
}

// outcomeText builds the transcript summary for a submission outcome,
// echoing the service's view of the feedback when it provided one.
func (w *Workflow) outcomeText(out Outcome) string {
	if out.Err != nil {
		return "Feedback submission failed: " + failureReason(out.Response, out.Err)
	}

	polarity := out.Response.UserFeedback
	if polarity == "" {
		polarity = out.Request.UserFeedback
	}
	comment := out.Response.Comment
	if comment == "" {
		comment = out.Request.Comment
	}

	if comment == "" {
		return fmt.Sprintf("Feedback received (%s). Thank you!", polarity)
	}
	return fmt.Sprintf("Feedback received (%s). Comment: %q. Thank you!", polarity, comment)
}

// failureReason picks the user-visible reason for a failed submission.
func failureReason(resp Response, err error) string {
	if resp.Message != "" {
		return resp.Message
	}
	if err != nil {
		return err.Error()
	}
	return "the feedback service rejected the submission"
}
