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
	"fmt"
	"sync"
)

// edge is one directed, kinded connection between two nodes.
type edge struct {
	from string
	to   string
	kind EdgeKind
}

// Graph is a directed graph of nodes with kinded connections. Build it with
// AddNode and Connect, then hand it to the resolver read-only.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	// inbound groups edges by target node, in insertion order.
	inbound map[string][]*edge
}

var _ GraphReader = (*Graph)(nil)

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		inbound: make(map[string][]*edge),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}
	if node.ID == "" {
		return fmt.Errorf("node ID cannot be empty for %+v", node)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[node.ID]; exists {
		return fmt.Errorf("node with ID %s already exists", node.ID)
	}
	g.nodes[node.ID] = node
	return nil
}

// Connect adds a directed edge of the given kind from one node to another.
func (g *Graph) Connect(from, to string, kind EdgeKind) error {
	if from == "" || to == "" {
		return fmt.Errorf("edge from and to cannot be empty")
	}
	if from == to {
		return fmt.Errorf("node %s cannot connect to itself", from)
	}
	if !kind.IsValid() {
		return fmt.Errorf("unknown edge kind %q", kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("source node %s does not exist", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("target node %s does not exist", to)
	}
	g.inbound[to] = append(g.inbound[to], &edge{from: from, to: to, kind: kind})
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, exists := g.nodes[id]
	return node, exists
}

// UpstreamNodes implements GraphReader. Disabled nodes are filtered out.
func (g *Graph) UpstreamNodes(nodeID string, kind EdgeKind) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var ups []*Node
	for _, e := range g.inbound[nodeID] {
		if e.kind != kind {
			continue
		}
		node, exists := g.nodes[e.from]
		if !exists || node.Disabled {
			continue
		}
		ups = append(ups, node)
	}
	return ups
}

// Nodes returns all nodes in the graph in unspecified order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}
