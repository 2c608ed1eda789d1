// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// FEEDBACK PHASE
// =============================================================================

// FeedbackPhase is the state of the per-message feedback sub-machine.
type FeedbackPhase int

const (
	// FeedbackNone means no feedback interaction is in progress.
	FeedbackNone FeedbackPhase = iota
	// FeedbackCollecting means the comment input is open and editable.
	FeedbackCollecting
	// FeedbackSubmitting means a submission is in flight.
	FeedbackSubmitting
	// FeedbackResolved means the service acknowledged the submission.
	FeedbackResolved
	// FeedbackFailed means the submission was rejected or the call failed.
	FeedbackFailed
)

// String returns the phase name.
func (p FeedbackPhase) String() string {
	switch p {
	case FeedbackNone:
		return "none"
	case FeedbackCollecting:
		return "collecting"
	case FeedbackSubmitting:
		return "submitting"
	case FeedbackResolved:
		return "resolved"
	case FeedbackFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase accepts no further mutation.
func (p FeedbackPhase) Terminal() bool {
	return p == FeedbackResolved || p == FeedbackFailed
}

// =============================================================================
// POLARITY
// =============================================================================

// Polarity is the direction of a piece of feedback. The empty string means
// unset.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Valid reports whether the polarity is one of the two known values.
func (p Polarity) Valid() bool {
	return p == PolarityPositive || p == PolarityNegative
}

// =============================================================================
// FEEDBACK SUB-RECORD
// =============================================================================

// Feedback is the per-message feedback sub-record. It is owned exclusively by
// its message; the zero value (phase none, unset polarity, empty comment)
// represents "no feedback interaction".
//
// Invariant: Polarity and Comment are cleared whenever the phase returns to
// none or reaches a terminal phase.
type Feedback struct {
	Phase    FeedbackPhase `json:"phase,omitempty"`
	Polarity Polarity      `json:"polarity,omitempty"`
	Comment  string        `json:"comment,omitempty"`
}

// Collecting returns a sub-record opened for comment collection.
func (f Feedback) Collecting(polarity Polarity) Feedback {
	return Feedback{Phase: FeedbackCollecting, Polarity: polarity}
}

// WithComment returns a copy with the comment replaced. Comments are mutable
// only while collecting; callers enforce the phase check.
func (f Feedback) WithComment(comment string) Feedback {
	f.Comment = comment
	return f
}

// Submitting returns a copy advanced to the submitting phase.
func (f Feedback) Submitting() Feedback {
	f.Phase = FeedbackSubmitting
	return f
}

// Terminal returns a sub-record in the given terminal phase with its
// transient fields cleared.
func (f Feedback) Terminal(phase FeedbackPhase) Feedback {
	return Feedback{Phase: phase}
}

// Cleared returns the zero sub-record.
func (f Feedback) Cleared() Feedback {
	return Feedback{}
}
