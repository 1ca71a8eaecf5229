//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package workflow

import (
	"context"
	"fmt"
	"sync"
)

// NodeFactory materializes the output items of one node from its
// configuration. Provider nodes return items carrying the capability value
// in the Provider field.
type NodeFactory func(ctx context.Context, node *Node, input []Item) ([]Item, error)

// Registry maps node-type identifiers to factories. The caller builds one
// at startup and passes it where inline node execution is needed; there is
// no process-global instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]NodeFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]NodeFactory)}
}

// Register binds a node type to its factory. Registering the same type
// twice is a configuration error.
func (r *Registry) Register(nodeType string, factory NodeFactory) error {
	if nodeType == "" {
		return fmt.Errorf("node type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for node type %s", nodeType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[nodeType]; exists {
		return fmt.Errorf("node type %s already registered", nodeType)
	}
	r.factories[nodeType] = factory
	return nil
}

// Lookup returns the factory for a node type.
func (r *Registry) Lookup(nodeType string) (NodeFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[nodeType]
	return factory, ok
}

// Execute runs the factory registered for the node's type.
func (r *Registry) Execute(ctx context.Context, node *Node, input []Item) ([]Item, error) {
	if node == nil {
		return nil, fmt.Errorf("node cannot be nil")
	}
	factory, ok := r.Lookup(node.Type)
	if !ok {
		return nil, fmt.Errorf("no factory registered for node type %s", node.Type)
	}
	return factory(ctx, node, input)
}
