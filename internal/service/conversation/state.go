// Package conversation keeps a user's ordered chat turns in sync with a
// persistent key-value store.
package conversation

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/symptomsync/healthai/backend/internal/model/chat"
)

const keyPrefix = "chat-"

// Key returns the storage key of userID's conversation.
func Key(userID string) string {
	return keyPrefix + userID
}

// State is the ordered, append-only turn sequence of one user. Every
// mutation is written through to the store before it becomes visible.
type State struct {
	mu     sync.RWMutex
	store  Store
	userID string
	turns  []chat.Turn
}

// NewState returns an empty State backed by store. Call Hydrate to bind it
// to a user.
func NewState(store Store) *State {
	return &State{store: store}
}

// Hydrate binds the state to userID and loads the stored turns. A missing
// key or an unreadable value yields an empty history.
func (s *State) Hydrate(ctx context.Context, userID string) error {
	raw, ok, err := s.store.Get(ctx, Key(userID))
	if err != nil {
		return oops.In("conversation").With("user", userID).Wrapf(err, "failed to read conversation")
	}

	var turns []chat.Turn
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &turns); err != nil {
			slog.Warn("discarding unreadable conversation", "component", "conversation", "user", userID, "error", err)
			turns = nil
		}
	}

	s.mu.Lock()
	s.userID = userID
	s.turns = turns
	s.mu.Unlock()
	return nil
}

// UserID returns the user the state is bound to.
func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Append adds turn to the end of the sequence and persists the full sequence.
// On a write failure the in-memory sequence is left unchanged.
func (s *State) Append(ctx context.Context, turn chat.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]chat.Turn, len(s.turns), len(s.turns)+1)
	copy(next, s.turns)
	next = append(next, turn)

	payload, err := json.Marshal(next)
	if err != nil {
		return oops.In("conversation").With("user", s.userID).Wrapf(err, "failed to encode conversation")
	}
	if err := s.store.Set(ctx, Key(s.userID), string(payload)); err != nil {
		return oops.In("conversation").With("user", s.userID).Wrapf(err, "failed to persist conversation")
	}

	s.turns = next
	return nil
}

// Clear empties the sequence and removes the stored key.
func (s *State) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, Key(s.userID)); err != nil {
		return oops.In("conversation").With("user", s.userID).Wrapf(err, "failed to remove conversation")
	}
	s.turns = nil
	return nil
}

// Turns returns a copy of the sequence in insertion order.
func (s *State) Turns() []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Turn(nil), s.turns...)
}

// Len returns the number of turns.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}
