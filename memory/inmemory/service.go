//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory window-buffer memory service.
package inmemory

import (
	"context"
	"sync"

	"trpc.group/trpc-go/trpc-flow-go/memory"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// defaultWindowSize is the number of exchanges (user/assistant pairs) kept
// per session.
const defaultWindowSize = 5

// Store holds window-buffered conversation histories keyed by session.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string][]model.Message
	windowSize int
}

// Option represents a functional option for configuring the Store.
type Option func(*Store)

// WithWindowSize sets how many exchanges are kept per session. A value of
// n retains the most recent 2n messages.
func WithWindowSize(n int) Option {
	return func(s *Store) {
		if n <= 0 {
			n = defaultWindowSize
		}
		s.windowSize = n
	}
}

// NewStore creates a new window-buffer store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:   make(map[string][]model.Message),
		windowSize: defaultWindowSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns a memory.Service bound to the given session key. Handles
// for the same key share one history.
func (s *Store) Session(key string) *Session {
	return &Session{store: s, key: key}
}

// ClearSession drops the history for one session key.
func (s *Store) ClearSession(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// load returns a copy of the session history.
func (s *Store) load(key string) []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.sessions[key]
	out := make([]model.Message, len(history))
	copy(out, history)
	return out
}

// save appends turns and trims the window to the most recent messages.
func (s *Store) save(key string, turns []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[key]
	for _, turn := range turns {
		// Skip a turn identical to the last stored message, so saving the
		// same exchange twice does not duplicate history.
		if n := len(history); n > 0 && model.MessagesEqual(history[n-1], turn) {
			continue
		}
		history = append(history, turn)
	}

	if limit := 2 * s.windowSize; len(history) > limit {
		history = history[len(history)-limit:]
	}
	s.sessions[key] = history
}

var _ memory.Service = (*Session)(nil)

// Session is a memory.Service view over one session key of a Store.
type Session struct {
	store *Store
	key   string
}

// Load implements memory.Service.
func (s *Session) Load(_ context.Context) ([]model.Message, error) {
	return s.store.load(s.key), nil
}

// Save implements memory.Service.
func (s *Session) Save(_ context.Context, turns ...model.Message) error {
	s.store.save(s.key, turns)
	return nil
}
