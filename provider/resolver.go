//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package provider resolves the agent's capability providers (model, memory,
// tools, retrievers) from the workflow graph. Resolution is a lazy pull: read
// the upstream node's materialized items, force-execute the node when nothing
// is materialized yet, then extract the typed capability from its output.
// Handles are resolved once per invocation and never cached across
// invocations.
package provider

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
	"trpc.group/trpc-go/trpc-flow-go/embedder"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/memory"
	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/retriever"
	"trpc.group/trpc-go/trpc-flow-go/tool"
	"trpc.group/trpc-go/trpc-flow-go/workflow"
)

// ErrNoModel is returned when no language-model provider is connected to the
// agent node. A missing model is fatal to the invocation; missing memory or
// tools only degrade it.
var ErrNoModel = errors.New("no language model connected")

// maxEmbeddingDepth bounds provider recursion: a vector-store node may pull
// its own embedding provider, but no deeper.
const maxEmbeddingDepth = 1

// NamedRetriever pairs a resolved retriever with the node name it came from,
// so the tool collection can derive a search tool name from it.
type NamedRetriever struct {
	Name      string
	Retriever retriever.Retriever
}

// Resolved bundles every capability pulled for one invocation.
type Resolved struct {
	Model      model.Model
	Memory     memory.Service
	Tools      []tool.Entry
	ToolSets   []tool.ToolSet
	Retrievers []*NamedRetriever
}

// Collection assembles the invocation-scoped tool collection from the
// resolved capabilities. Provider lifecycles stay with whoever materialized
// them; closing the collection is the caller's call, not an obligation.
func (r *Resolved) Collection(ctx context.Context) *tool.Collection {
	opts := make([]tool.CollectionOption, 0, 3)
	if len(r.Tools) > 0 {
		opts = append(opts, tool.WithEntries(r.Tools...))
	}
	if len(r.Retrievers) > 0 {
		entries := make([]tool.RetrieverEntry, 0, len(r.Retrievers))
		for _, nr := range r.Retrievers {
			entries = append(entries, tool.RetrieverEntry{Retriever: nr.Retriever, NodeName: nr.Name})
		}
		opts = append(opts, tool.WithRetrievers(entries...))
	}
	if len(r.ToolSets) > 0 {
		opts = append(opts, tool.WithToolSets(r.ToolSets...))
	}
	return tool.NewCollection(ctx, opts...)
}

// Resolver pulls capability providers for one agent node out of a graph and
// its execution state.
type Resolver struct {
	graph     workflow.GraphReader
	state     *workflow.State
	executor  workflow.NodeExecutor
	registry  *workflow.Registry
	execGroup singleflight.Group
}

// Option represents a functional option for configuring the Resolver.
type Option func(*Resolver)

// WithNodeExecutor injects the engine's node executor, used to force-execute
// unmaterialized provider nodes.
func WithNodeExecutor(executor workflow.NodeExecutor) Option {
	return func(r *Resolver) {
		r.executor = executor
	}
}

// WithRegistry sets the node-type registry used as the inline execution
// fallback when no node executor is injected.
func WithRegistry(registry *workflow.Registry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// NewResolver creates a resolver over one graph and one execution state.
func NewResolver(graph workflow.GraphReader, state *workflow.State, opts ...Option) *Resolver {
	r := &Resolver{graph: graph, state: state}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAll pulls every capability for the given agent node. A missing
// model fails resolution; missing memory, tools and retrievers leave the
// corresponding fields empty.
func (r *Resolver) ResolveAll(ctx context.Context, agentNodeID string) (*Resolved, error) {
	m, err := r.ResolveModel(ctx, agentNodeID)
	if err != nil {
		return nil, err
	}
	mem, err := r.ResolveMemory(ctx, agentNodeID)
	if err != nil {
		return nil, err
	}
	tools, toolSets, err := r.ResolveTools(ctx, agentNodeID)
	if err != nil {
		return nil, err
	}
	retrievers, err := r.ResolveRetrievers(ctx, agentNodeID)
	if err != nil {
		return nil, err
	}
	return &Resolved{
		Model:      m,
		Memory:     mem,
		Tools:      tools,
		ToolSets:   toolSets,
		Retrievers: retrievers,
	}, nil
}

// ResolveModel pulls the language-model provider. Exactly one is expected;
// with several connected the first wins. Absence is fatal: ErrNoModel.
func (r *Resolver) ResolveModel(ctx context.Context, agentNodeID string) (model.Model, error) {
	for _, node := range r.graph.UpstreamNodes(agentNodeID, workflow.KindModel) {
		items, err := r.nodeItems(ctx, node, 0)
		if err != nil {
			return nil, fmt.Errorf("resolve model from node %s: %w", node.ID, err)
		}
		if m, ok := extractProvider[model.Model](items); ok {
			log.Debugf("resolved model provider from node %s", node.ID)
			return m, nil
		}
		log.Warnf("node %s on model connection produced no model capability", node.ID)
	}
	return nil, ErrNoModel
}

// ResolveMemory pulls the optional conversation-memory provider. Returns
// (nil, nil) when no memory node is connected.
func (r *Resolver) ResolveMemory(ctx context.Context, agentNodeID string) (memory.Service, error) {
	for _, node := range r.graph.UpstreamNodes(agentNodeID, workflow.KindMemory) {
		items, err := r.nodeItems(ctx, node, 0)
		if err != nil {
			return nil, fmt.Errorf("resolve memory from node %s: %w", node.ID, err)
		}
		if mem, ok := extractProvider[memory.Service](items); ok {
			log.Debugf("resolved memory provider from node %s", node.ID)
			return mem, nil
		}
		log.Warnf("node %s on memory connection produced no memory capability", node.ID)
	}
	return nil, nil
}

// ResolveTools pulls every tool provider in connection order, each entry
// tagged with its source node for attribution. One node may contribute
// several tools; tool sets (e.g. MCP servers) stay grouped so the collection
// can expand and close them. Name collisions are left to the collection,
// which keeps the first and warns.
func (r *Resolver) ResolveTools(ctx context.Context, agentNodeID string) ([]tool.Entry, []tool.ToolSet, error) {
	var tools []tool.Entry
	var toolSets []tool.ToolSet
	for _, node := range r.graph.UpstreamNodes(agentNodeID, workflow.KindTool) {
		items, err := r.nodeItems(ctx, node, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve tools from node %s: %w", node.ID, err)
		}
		found := false
		for _, item := range items {
			switch p := item.Provider.(type) {
			case tool.CallableTool:
				tools = append(tools, tool.Entry{Tool: p, NodeName: nodeLabel(node)})
				found = true
			case tool.ToolSet:
				toolSets = append(toolSets, p)
				found = true
			}
		}
		if !found {
			log.Warnf("node %s on tool connection produced no tool capability", node.ID)
		}
	}
	return tools, toolSets, nil
}

// ResolveRetrievers pulls every retriever provider in connection order,
// tagged with the node name the search tool will be derived from.
func (r *Resolver) ResolveRetrievers(ctx context.Context, agentNodeID string) ([]*NamedRetriever, error) {
	var retrievers []*NamedRetriever
	for _, node := range r.graph.UpstreamNodes(agentNodeID, workflow.KindRetriever) {
		items, err := r.nodeItems(ctx, node, 0)
		if err != nil {
			return nil, fmt.Errorf("resolve retriever from node %s: %w", node.ID, err)
		}
		found := false
		for _, item := range items {
			if ret, ok := item.Provider.(retriever.Retriever); ok {
				retrievers = append(retrievers, &NamedRetriever{Name: nodeLabel(node), Retriever: ret})
				found = true
			}
		}
		if !found {
			log.Warnf("node %s on retriever connection produced no retriever capability", node.ID)
		}
	}
	return retrievers, nil
}

// nodeItems returns the node's materialized items, force-executing the node
// first when nothing is materialized yet. Concurrent rows pulling the same
// cold node share a single execution.
func (r *Resolver) nodeItems(ctx context.Context, node *workflow.Node, depth int) ([]workflow.Item, error) {
	items := r.state.Items(node.ID)
	if len(items) > 0 {
		return items, nil
	}

	_, err, _ := r.execGroup.Do(node.ID, func() (any, error) {
		if len(r.state.Items(node.ID)) > 0 {
			return nil, nil
		}
		input, err := r.executionInput(ctx, node, depth)
		if err != nil {
			return nil, err
		}
		return nil, r.executeNode(ctx, node, input)
	})
	if err != nil {
		return nil, err
	}
	return r.state.Items(node.ID), nil
}

// executionInput builds the input items for a force-executed provider node.
// Within the recursion bound, a node's own embedding provider is resolved
// first and handed over as an input item; otherwise the node gets a single
// placeholder item.
func (r *Resolver) executionInput(ctx context.Context, node *workflow.Node, depth int) ([]workflow.Item, error) {
	placeholder := []workflow.Item{{JSON: map[string]any{}}}
	if depth >= maxEmbeddingDepth {
		return placeholder, nil
	}

	var input []workflow.Item
	for _, embNode := range r.graph.UpstreamNodes(node.ID, workflow.KindEmbedding) {
		embItems, err := r.nodeItems(ctx, embNode, depth+1)
		if err != nil {
			return nil, fmt.Errorf("resolve embedding from node %s: %w", embNode.ID, err)
		}
		if emb, ok := extractProvider[embedder.Embedder](embItems); ok {
			log.Debugf("resolved embedding provider from node %s for node %s", embNode.ID, node.ID)
			input = append(input, workflow.Item{Provider: emb})
		} else {
			log.Warnf("node %s on embedding connection produced no embedding capability", embNode.ID)
		}
	}
	if len(input) == 0 {
		return placeholder, nil
	}
	return input, nil
}

// executeNode force-executes one node through the engine executor when
// injected, else inline through the registry.
func (r *Resolver) executeNode(ctx context.Context, node *workflow.Node, input []workflow.Item) error {
	if r.executor != nil {
		return r.executor.ExecuteNode(ctx, node, input)
	}
	if r.registry != nil {
		out, err := r.registry.Execute(ctx, node, input)
		if err != nil {
			return err
		}
		r.state.SetItems(node.ID, out)
		return nil
	}
	return fmt.Errorf("node %s has no materialized output and no executor or registry is configured", node.ID)
}

// extractProvider returns the first provider of type T among the items.
func extractProvider[T any](items []workflow.Item) (T, bool) {
	for _, item := range items {
		if item.Provider == nil {
			continue
		}
		if v, ok := item.Provider.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// nodeLabel prefers the display name, falling back to the node ID.
func nodeLabel(node *workflow.Node) string {
	if node.Name != "" {
		return node.Name
	}
	return node.ID
}
