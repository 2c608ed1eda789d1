// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

// =============================================================================
// APPEND TESTS
// =============================================================================

func TestStore_Append_PreservesOrder(t *testing.T) {
	s := NewStore().
		Append(NewUserMessage("first", "first")).
		Append(NewAssistantMessage("second", "second", false)).
		Append(NewUserMessage("third", "third"))

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	msgs := s.Messages()
	if msgs[0].RawContent != "first" || msgs[1].RawContent != "second" || msgs[2].RawContent != "third" {
		t.Error("messages should appear in append order")
	}
}

func TestStore_Append_SnapshotIndependence(t *testing.T) {
	s1 := NewStore().Append(NewUserMessage("one", "one"))
	s2 := s1.Append(NewUserMessage("two", "two"))

	if s1.Len() != 1 {
		t.Errorf("earlier snapshot mutated: Len = %d, want 1", s1.Len())
	}
	if s2.Len() != 2 {
		t.Errorf("new snapshot Len = %d, want 2", s2.Len())
	}
}

func TestStore_Append_TypingSingleton(t *testing.T) {
	s := NewStore().
		Append(NewUserMessage("q", "q")).
		Append(NewTypingMessage()).
		Append(NewTypingMessage())

	count := 0
	for _, m := range s.Messages() {
		if m.ID == TypingID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("typing placeholder count = %d, want 1", count)
	}
	last, _ := s.Last()
	if !last.IsTyping {
		t.Error("re-appended placeholder should sit at the end")
	}
}

// =============================================================================
// REPLACE TYPING TESTS
// =============================================================================

func TestStore_ReplaceTyping(t *testing.T) {
	s := NewStore().
		Append(NewUserMessage("q", "q")).
		Append(NewTypingMessage())

	reply := NewAssistantMessage("a", "a", false)
	s = s.ReplaceTyping(reply)

	if s.HasTyping() {
		t.Error("placeholder should be gone after ReplaceTyping")
	}
	last, ok := s.Last()
	if !ok || last.ID != reply.ID {
		t.Error("reply should be the last message")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestStore_ReplaceTyping_NoPlaceholder(t *testing.T) {
	// A clear can race an in-flight reply; the reply is then simply appended.
	s := NewStore().Append(NewWelcomeMessage("hi", "hi"))

	reply := NewAssistantMessage("late answer", "late answer", false)
	s = s.ReplaceTyping(reply)

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	last, _ := s.Last()
	if last.ID != reply.ID {
		t.Error("late reply should be appended when no placeholder exists")
	}
}

// =============================================================================
// UPDATE TESTS
// =============================================================================

func TestStore_UpdateByID(t *testing.T) {
	msg := NewAssistantMessage("a", "a", false)
	s := NewStoreWith(msg)

	s2 := s.UpdateByID(msg.ID, func(m Message) Message {
		m.Feedback = m.Feedback.Collecting(PolarityPositive)
		return m
	})

	got, _ := s2.ByID(msg.ID)
	if got.Feedback.Phase != FeedbackCollecting {
		t.Errorf("patched phase = %v, want collecting", got.Feedback.Phase)
	}

	// The earlier snapshot stays untouched.
	orig, _ := s.ByID(msg.ID)
	if orig.Feedback.Phase != FeedbackNone {
		t.Error("UpdateByID mutated the original snapshot")
	}
}

func TestStore_UpdateByID_MissingIsNoop(t *testing.T) {
	s := NewStoreWith(NewUserMessage("q", "q"))

	called := false
	s2 := s.UpdateByID("msg_absent", func(m Message) Message {
		called = true
		return m
	})

	if called {
		t.Error("patch should not run for a missing id")
	}
	if s2.Len() != s.Len() {
		t.Error("missing id should leave the store unchanged")
	}
}

// =============================================================================
// RESET AND LOOKUP TESTS
// =============================================================================

func TestStore_Reset(t *testing.T) {
	s := NewStore().
		Append(NewUserMessage("q", "q")).
		Append(NewAssistantMessage("a", "a", false))

	welcome := NewWelcomeMessage("hello", "hello")
	s = s.Reset(welcome)

	if s.Len() != 1 {
		t.Fatalf("Len after Reset = %d, want 1", s.Len())
	}
	got, ok := s.ByID(WelcomeID)
	if !ok || got.RawContent != "hello" {
		t.Error("Reset should seed the welcome banner")
	}
}

func TestStore_LastAssistant_SkipsTyping(t *testing.T) {
	answer := NewAssistantMessage("a", "a", false)
	s := NewStore().
		Append(NewUserMessage("q1", "q1")).
		Append(answer).
		Append(NewUserMessage("q2", "q2")).
		Append(NewTypingMessage())

	got, ok := s.LastAssistant()
	if !ok {
		t.Fatal("expected an assistant message")
	}
	if got.ID != answer.ID {
		t.Errorf("LastAssistant = %q, want %q (placeholder skipped)", got.ID, answer.ID)
	}
}

func TestStore_LastAssistant_Empty(t *testing.T) {
	s := NewStoreWith(NewUserMessage("q", "q"))
	if _, ok := s.LastAssistant(); ok {
		t.Error("LastAssistant should report absence")
	}
}

func TestStore_HasTyping(t *testing.T) {
	s := NewStore()
	if s.HasTyping() {
		t.Error("empty store should not report typing")
	}
	s = s.Append(NewTypingMessage())
	if !s.HasTyping() {
		t.Error("store with placeholder should report typing")
	}
}
