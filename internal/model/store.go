// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// STORE TYPE
// =============================================================================

// Store is an immutable snapshot of the ordered conversation transcript.
//
// Every mutation returns a new snapshot; the previous one stays valid and
// independently observable, so consumers may diff snapshots by reference.
// Mutations are serialized by the single event loop that drives the UI —
// there is no internal locking and none is needed.
type Store struct {
	messages []Message
}

// NewStore creates an empty store.
func NewStore() Store {
	return Store{}
}

// NewStoreWith creates a store seeded with the given messages.
func NewStoreWith(msgs ...Message) Store {
	return Store{}.appendAll(msgs)
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Messages returns the transcript in order. The returned slice is shared
// with the snapshot and must not be mutated.
func (s Store) Messages() []Message {
	return s.messages
}

// Len returns the number of messages.
func (s Store) Len() int {
	return len(s.messages)
}

// ByID returns the message with the given identity, if present.
func (s Store) ByID(id string) (Message, bool) {
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// Last returns the most recent message, if any.
func (s Store) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// LastAssistant returns the most recent non-typing assistant message.
func (s Store) LastAssistant() (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant && !s.messages[i].IsTyping {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// HasTyping reports whether the typing placeholder is present.
func (s Store) HasTyping() bool {
	_, ok := s.ByID(TypingID)
	return ok
}

// =============================================================================
// MUTATIONS (copy-on-write)
// =============================================================================

// Append returns a snapshot with the message added at the end. Appending a
// typing placeholder first removes any existing one, preserving the
// singleton invariant.
func (s Store) Append(msg Message) Store {
	if msg.IsTyping || msg.ID == TypingID {
		s = s.remove(TypingID)
	}
	out := make([]Message, len(s.messages), len(s.messages)+1)
	copy(out, s.messages)
	return Store{messages: append(out, msg)}
}

// ReplaceTyping atomically removes the typing placeholder and appends the
// given message. If no placeholder exists (for example after a conversation
// clear raced with an in-flight reply), the message is simply appended.
func (s Store) ReplaceTyping(msg Message) Store {
	return s.remove(TypingID).Append(msg)
}

// UpdateByID returns a snapshot with the patch applied to the message
// matching id. A missing id is a no-op, not an error.
func (s Store) UpdateByID(id string, patch func(Message) Message) Store {
	for i, m := range s.messages {
		if m.ID == id {
			out := make([]Message, len(s.messages))
			copy(out, s.messages)
			out[i] = patch(m)
			return Store{messages: out}
		}
	}
	return s
}

// Reset returns an empty store seeded with the given messages (typically the
// welcome banner). Individual messages are never deleted; the whole
// transcript is replaced on conversation clear.
func (s Store) Reset(seed ...Message) Store {
	return Store{}.appendAll(seed)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// remove returns a snapshot without the message matching id. Returns the
// receiver unchanged when the id is absent, so unchanged stores keep their
// identity for reference diffing.
func (s Store) remove(id string) Store {
	idx := -1
	for i, m := range s.messages {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	out := make([]Message, 0, len(s.messages)-1)
	out = append(out, s.messages[:idx]...)
	out = append(out, s.messages[idx+1:]...)
	return Store{messages: out}
}

func (s Store) appendAll(msgs []Message) Store {
	out := s
	for _, m := range msgs {
		out = out.Append(m)
	}
	return out
}
