// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

// =============================================================================
// PHASE TESTS
// =============================================================================

func TestFeedbackPhase_String(t *testing.T) {
	tests := []struct {
		phase FeedbackPhase
		want  string
	}{
		{FeedbackNone, "none"},
		{FeedbackCollecting, "collecting"},
		{FeedbackSubmitting, "submitting"},
		{FeedbackResolved, "resolved"},
		{FeedbackFailed, "failed"},
		{FeedbackPhase(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("FeedbackPhase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestFeedbackPhase_Terminal(t *testing.T) {
	if FeedbackNone.Terminal() || FeedbackCollecting.Terminal() || FeedbackSubmitting.Terminal() {
		t.Error("non-terminal phases reported terminal")
	}
	if !FeedbackResolved.Terminal() || !FeedbackFailed.Terminal() {
		t.Error("terminal phases not reported terminal")
	}
}

// =============================================================================
// POLARITY TESTS
// =============================================================================

func TestPolarity_Valid(t *testing.T) {
	if !PolarityPositive.Valid() || !PolarityNegative.Valid() {
		t.Error("known polarities should be valid")
	}
	if Polarity("").Valid() {
		t.Error("empty polarity should be invalid")
	}
	if Polarity("neutral").Valid() {
		t.Error("unknown polarity should be invalid")
	}
}

// =============================================================================
// SUB-RECORD TRANSITION TESTS
// =============================================================================

func TestFeedback_Transitions(t *testing.T) {
	var f Feedback

	f = f.Collecting(PolarityNegative)
	if f.Phase != FeedbackCollecting || f.Polarity != PolarityNegative {
		t.Fatalf("Collecting = %+v", f)
	}

	f = f.WithComment("missing steps")
	if f.Comment != "missing steps" {
		t.Fatalf("WithComment = %+v", f)
	}

	f = f.Submitting()
	if f.Phase != FeedbackSubmitting || f.Polarity != PolarityNegative || f.Comment != "missing steps" {
		t.Fatalf("Submitting must keep transient fields, got %+v", f)
	}

	f = f.Terminal(FeedbackResolved)
	if f.Phase != FeedbackResolved {
		t.Errorf("Terminal phase = %v, want resolved", f.Phase)
	}
	if f.Polarity != "" || f.Comment != "" {
		t.Errorf("Terminal must clear transient fields, got %+v", f)
	}

	f = f.Cleared()
	if f != (Feedback{}) {
		t.Errorf("Cleared = %+v, want zero value", f)
	}
}
