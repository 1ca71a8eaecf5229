//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package workflow provides the node-graph data model the agent resolves
// providers from: nodes, typed connections, materialized output items and
// the node-type registry. The surrounding engine owns scheduling and node
// execution; this package only models what the agent needs to read.
package workflow

import "context"

// EdgeKind identifies the connection type between two nodes. Main edges
// carry row data; the remaining kinds attach capability providers to the
// node that consumes them.
type EdgeKind string

const (
	// KindMain carries row data between nodes.
	KindMain EdgeKind = "main"
	// KindModel attaches a language-model provider.
	KindModel EdgeKind = "model"
	// KindMemory attaches a conversation-memory provider.
	KindMemory EdgeKind = "memory"
	// KindTool attaches a callable-tool provider.
	KindTool EdgeKind = "tool"
	// KindRetriever attaches a retriever provider.
	KindRetriever EdgeKind = "retriever"
	// KindEmbedding attaches an embedding provider.
	KindEmbedding EdgeKind = "embedding"
)

// String returns the kind identifier.
func (k EdgeKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is one of the defined connection types.
func (k EdgeKind) IsValid() bool {
	switch k {
	case KindMain, KindModel, KindMemory, KindTool, KindRetriever, KindEmbedding:
		return true
	}
	return false
}

// Node is one configured node instance in a workflow graph.
type Node struct {
	// ID uniquely identifies the node within its graph.
	ID string `json:"id"`

	// Name is the display name, used in tool naming and logs.
	Name string `json:"name"`

	// Type is the node-type identifier resolved through the Registry.
	Type string `json:"type"`

	// Parameters holds the node configuration as the engine stored it.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Disabled nodes are skipped during resolution.
	Disabled bool `json:"disabled,omitempty"`
}

// Item is one materialized output item of a node execution.
type Item struct {
	// JSON carries the row payload for main-kind connections.
	JSON map[string]any `json:"json,omitempty"`

	// Provider carries a capability value for provider-kind connections:
	// model.Model, memory.Service, tool.CallableTool, tool.ToolSet,
	// retriever.Retriever or embedder.Embedder. The resolver asserts the
	// concrete capability once at resolution time.
	Provider any `json:"-"`
}

// GraphReader is the read-only graph view provider resolution needs.
// *Graph implements it; engines with their own graph model can too.
type GraphReader interface {
	// Node returns a node by ID.
	Node(id string) (*Node, bool)

	// UpstreamNodes returns the nodes connected into nodeID over edges of
	// the given kind, in connection order.
	UpstreamNodes(nodeID string, kind EdgeKind) []*Node
}

// NodeExecutor force-executes one node so its output items become
// materialized in state. The engine injects its own implementation; when
// absent, resolution falls back to the inline Registry.
type NodeExecutor interface {
	ExecuteNode(ctx context.Context, node *Node, input []Item) error
}
