//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import "sync"

// State holds the materialized output items of executed nodes. The engine
// (or the inline registry fallback) writes into it; the resolver reads it.
type State struct {
	mu    sync.RWMutex
	items map[string][]Item
}

// NewState creates an empty execution state.
func NewState() *State {
	return &State{items: make(map[string][]Item)}
}

// SetItems replaces the materialized output of one node.
func (s *State) SetItems(nodeID string, items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]Item, len(items))
	copy(stored, items)
	s.items[nodeID] = stored
}

// Items returns a copy of the materialized output of one node. Nil means
// the node has not executed.
func (s *State) Items(nodeID string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.items[nodeID]
	if !ok {
		return nil
	}
	items := make([]Item, len(stored))
	copy(items, stored)
	return items
}

// Clear drops the materialized output of one node.
func (s *State) Clear(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, nodeID)
}
