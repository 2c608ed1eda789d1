// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/kbchat-tui/internal/model"
)

// fakeSubmitter records submissions and answers with a canned response.
type fakeSubmitter struct {
	resp Response
	err  error
	reqs []Request
}

func (f *fakeSubmitter) Submit(ctx context.Context, req Request) (Response, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

// assistantStore returns a store holding one assistant message and that
// message's id.
func assistantStore() (model.Store, string) {
	msg := model.NewAssistantMessage("answer", "answer", false)
	return model.NewStoreWith(msg), msg.ID
}

// =============================================================================
// PROMPT TESTS
// =============================================================================

func TestPromptFor(t *testing.T) {
	neg := PromptFor(model.PolarityNegative)
	assert.Equal(t, 4, neg.Rows)
	assert.Contains(t, neg.Placeholder, "wrong or missing")

	pos := PromptFor(model.PolarityPositive)
	assert.Equal(t, 2, pos.Rows)
	assert.Contains(t, pos.Placeholder, "optional")
}

// =============================================================================
// OPEN / EDIT / CANCEL TESTS
// =============================================================================

func TestWorkflow_Open(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()

	s = w.Open(s, id, model.PolarityNegative)

	msg, ok := s.ByID(id)
	require.True(t, ok)
	assert.Equal(t, model.FeedbackCollecting, msg.Feedback.Phase)
	assert.Equal(t, model.PolarityNegative, msg.Feedback.Polarity)
}

func TestWorkflow_Open_IgnoresInvalidTargets(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})

	t.Run("invalid polarity", func(t *testing.T) {
		s, id := assistantStore()
		s = w.Open(s, id, model.Polarity("meh"))
		msg, _ := s.ByID(id)
		assert.Equal(t, model.FeedbackNone, msg.Feedback.Phase)
	})

	t.Run("user message", func(t *testing.T) {
		user := model.NewUserMessage("q", "q")
		s := model.NewStoreWith(user)
		s = w.Open(s, user.ID, model.PolarityPositive)
		msg, _ := s.ByID(user.ID)
		assert.Equal(t, model.FeedbackNone, msg.Feedback.Phase)
	})

	t.Run("typing placeholder", func(t *testing.T) {
		s := model.NewStoreWith(model.NewTypingMessage())
		s = w.Open(s, model.TypingID, model.PolarityPositive)
		msg, _ := s.ByID(model.TypingID)
		assert.Equal(t, model.FeedbackNone, msg.Feedback.Phase)
	})

	t.Run("already past none", func(t *testing.T) {
		s, id := assistantStore()
		s = w.Open(s, id, model.PolarityPositive)
		s = w.Open(s, id, model.PolarityNegative)
		msg, _ := s.ByID(id)
		assert.Equal(t, model.PolarityPositive, msg.Feedback.Polarity,
			"a second open must not overwrite the active polarity")
	})
}

func TestWorkflow_EditComment(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()

	// Not collecting yet: ignored.
	s = w.EditComment(s, id, "too early")
	msg, _ := s.ByID(id)
	assert.Empty(t, msg.Feedback.Comment)

	s = w.Open(s, id, model.PolarityNegative)
	s = w.EditComment(s, id, "missing steps")
	msg, _ = s.ByID(id)
	assert.Equal(t, "missing steps", msg.Feedback.Comment)

	// Comments are replaced, not accumulated.
	s = w.EditComment(s, id, "still missing steps")
	msg, _ = s.ByID(id)
	assert.Equal(t, "still missing steps", msg.Feedback.Comment)
}

func TestWorkflow_Cancel(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()

	s = w.Open(s, id, model.PolarityNegative)
	s = w.EditComment(s, id, "draft")
	s = w.Cancel(s, id)

	msg, _ := s.ByID(id)
	assert.Equal(t, model.Feedback{}, msg.Feedback, "cancel must clear the whole sub-record")
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestWorkflow_BeginSubmit(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()
	s = w.Open(s, id, model.PolarityNegative)
	s = w.EditComment(s, id, "missing steps")

	s, sub := w.BeginSubmit(s, id, "sess-1")
	require.NotNil(t, sub)

	msg, _ := s.ByID(id)
	assert.Equal(t, model.FeedbackSubmitting, msg.Feedback.Phase)

	assert.Equal(t, id, sub.MessageID)
	assert.Equal(t, Request{
		MessageID:    id,
		UserFeedback: "negative",
		SessionID:    "sess-1",
		Comment:      "missing steps",
	}, sub.req)
}

func TestWorkflow_BeginSubmit_NotCollecting(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()

	s2, sub := w.BeginSubmit(s, id, "sess-1")
	assert.Nil(t, sub)
	msg, _ := s2.ByID(id)
	assert.Equal(t, model.FeedbackNone, msg.Feedback.Phase)
}

func TestWorkflow_BeginSubmit_SingleInFlight(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()
	s = w.Open(s, id, model.PolarityPositive)

	s, first := w.BeginSubmit(s, id, "sess-1")
	require.NotNil(t, first)

	_, second := w.BeginSubmit(s, id, "sess-1")
	assert.Nil(t, second, "a message must never have two submissions in flight")
}

func TestSubmission_Do(t *testing.T) {
	t.Run("acknowledged", func(t *testing.T) {
		svc := &fakeSubmitter{resp: Response{Success: true, Status: "ok"}}
		w := NewWorkflow(svc)
		s, id := assistantStore()
		s = w.Open(s, id, model.PolarityPositive)
		_, sub := w.BeginSubmit(s, id, "sess-1")

		out := sub.Do(context.Background())
		assert.NoError(t, out.Err)
		assert.Equal(t, id, out.MessageID)
		require.Len(t, svc.reqs, 1)
		assert.Equal(t, "positive", svc.reqs[0].UserFeedback)
	})

	t.Run("service rejection", func(t *testing.T) {
		svc := &fakeSubmitter{resp: Response{Success: false, Message: "rate limited"}}
		w := NewWorkflow(svc)
		s, id := assistantStore()
		s = w.Open(s, id, model.PolarityPositive)
		_, sub := w.BeginSubmit(s, id, "sess-1")

		out := sub.Do(context.Background())
		require.Error(t, out.Err)
		assert.Contains(t, out.Err.Error(), "rate limited")
	})

	t.Run("transport failure", func(t *testing.T) {
		svc := &fakeSubmitter{err: errors.New("connection refused")}
		w := NewWorkflow(svc)
		s, id := assistantStore()
		s = w.Open(s, id, model.PolarityPositive)
		_, sub := w.BeginSubmit(s, id, "sess-1")

		out := sub.Do(context.Background())
		assert.Error(t, out.Err)
	})
}

func TestWorkflow_CompleteSubmit_Success(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()
	s = w.Open(s, id, model.PolarityNegative)
	s = w.EditComment(s, id, "missing steps")
	s, sub := w.BeginSubmit(s, id, "sess-1")
	require.NotNil(t, sub)

	s = w.CompleteSubmit(s, Outcome{
		MessageID: id,
		Request:   sub.req,
		Response:  Response{Success: true},
	})

	msg, _ := s.ByID(id)
	assert.Equal(t, model.FeedbackResolved, msg.Feedback.Phase)
	assert.Empty(t, msg.Feedback.Polarity)
	assert.Empty(t, msg.Feedback.Comment)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.Contains(t, last.RawContent, "negative")
	assert.Contains(t, last.RawContent, "missing steps")
}

func TestWorkflow_CompleteSubmit_Failure(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()
	s = w.Open(s, id, model.PolarityPositive)
	s, sub := w.BeginSubmit(s, id, "sess-1")
	require.NotNil(t, sub)

	s = w.CompleteSubmit(s, Outcome{
		MessageID: id,
		Request:   sub.req,
		Response:  Response{Success: false, Message: "try again later"},
		Err:       errors.New("feedback rejected: try again later"),
	})

	msg, _ := s.ByID(id)
	assert.Equal(t, model.FeedbackFailed, msg.Feedback.Phase)

	last, _ := s.Last()
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.True(t, strings.HasPrefix(last.RawContent, "Feedback submission failed: "), last.RawContent)
	assert.Contains(t, last.RawContent, "try again later")
}

func TestWorkflow_CompleteSubmit_ClearsPending(t *testing.T) {
	svc := &fakeSubmitter{resp: Response{Success: true}}
	w := NewWorkflow(svc)
	s, id := assistantStore()

	s = w.Open(s, id, model.PolarityPositive)
	s, sub := w.BeginSubmit(s, id, "sess-1")
	require.NotNil(t, sub)
	s = w.CompleteSubmit(s, Outcome{MessageID: id, Request: sub.req, Response: Response{Success: true}})
	s = w.Dismiss(s, id)

	// A full round trip frees the message for another pass.
	s = w.Open(s, id, model.PolarityNegative)
	_, again := w.BeginSubmit(s, id, "sess-1")
	assert.NotNil(t, again)
}

func TestWorkflow_Dismiss(t *testing.T) {
	w := NewWorkflow(&fakeSubmitter{})
	s, id := assistantStore()
	s = w.Open(s, id, model.PolarityPositive)

	// Not terminal yet: ignored.
	s = w.Dismiss(s, id)
	msg, _ := s.ByID(id)
	assert.Equal(t, model.FeedbackCollecting, msg.Feedback.Phase)

	s, sub := w.BeginSubmit(s, id, "sess-1")
	require.NotNil(t, sub)
	s = w.CompleteSubmit(s, Outcome{MessageID: id, Request: sub.req, Response: Response{Success: true}})
	s = w.Dismiss(s, id)

	msg, _ = s.ByID(id)
	assert.Equal(t, model.FeedbackNone, msg.Feedback.Phase)
}

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

func TestWorkflow_NegativeFeedbackRoundTrip(t *testing.T) {
	svc := &fakeSubmitter{resp: Response{
		Success:      true,
		UserFeedback: "negative",
		Comment:      "missing steps",
	}}
	w := NewWorkflow(svc)
	s, id := assistantStore()

	s = w.Open(s, id, model.PolarityNegative)
	s = w.EditComment(s, id, "missing steps")
	s, sub := w.BeginSubmit(s, id, "sess-42")
	require.NotNil(t, sub)

	out := sub.Do(context.Background())
	require.NoError(t, out.Err)

	s = w.CompleteSubmit(s, out)

	require.Len(t, svc.reqs, 1)
	assert.Equal(t, "sess-42", svc.reqs[0].SessionID)

	msg, _ := s.ByID(id)
	assert.Equal(t, model.FeedbackResolved, msg.Feedback.Phase)

	last, _ := s.Last()
	assert.Contains(t, last.RawContent, "Feedback received (negative)")
	assert.Contains(t, last.RawContent, `"missing steps"`)
}
