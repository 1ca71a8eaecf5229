//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"errors"

	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/retriever"
)

// SourceKind classifies where a tool in a collection came from.
type SourceKind string

// Tool source kinds.
const (
	// SourceNode is a tool supplied directly by a workflow node.
	SourceNode SourceKind = "node"
	// SourceRetriever is a wrapped vector-store search operation.
	SourceRetriever SourceKind = "retriever"
	// SourceToolSet is a tool expanded from a tool set, e.g. an MCP server.
	SourceToolSet SourceKind = "toolset"
)

// Source identifies the origin of one tool for result attribution and
// telemetry. It never participates in control flow.
type Source struct {
	Kind SourceKind `json:"kind"`
	Name string     `json:"name"`
}

// Entry associates a callable tool with its originating workflow node.
type Entry struct {
	Tool CallableTool
	// NodeName is the workflow node that supplied the tool.
	NodeName string
}

// RetrieverEntry is a vector-store node to expose as a query tool.
type RetrieverEntry struct {
	Retriever retriever.Retriever
	// NodeName is the workflow node that supplied the retriever; it also
	// derives the tool name.
	NodeName string
	// Description overrides the default tool description when non-empty.
	Description string
}

// Collection aggregates the tools available to one agent invocation from
// three sources: direct node tools, retriever wrappers and tool sets. It is
// built once per invocation and immutable afterwards.
type Collection struct {
	tools   map[string]CallableTool
	sources map[string]Source
	order   []string
	sets    []ToolSet
}

// CollectionOption configures NewCollection.
type CollectionOption func(*collectionOptions)

type collectionOptions struct {
	entries    []Entry
	retrievers []RetrieverEntry
	sets       []ToolSet
}

// WithEntries adds directly connected node tools.
func WithEntries(entries ...Entry) CollectionOption {
	return func(o *collectionOptions) {
		o.entries = append(o.entries, entries...)
	}
}

// WithRetrievers adds vector-store nodes, each wrapped as a search tool.
func WithRetrievers(entries ...RetrieverEntry) CollectionOption {
	return func(o *collectionOptions) {
		o.retrievers = append(o.retrievers, entries...)
	}
}

// WithToolSets adds tool sets. The collection takes ownership and closes
// them on Close.
func WithToolSets(sets ...ToolSet) CollectionOption {
	return func(o *collectionOptions) {
		o.sets = append(o.sets, sets...)
	}
}

// NewCollection builds a collection for one invocation. The context bounds
// tool-set expansion (an MCP server may need a round trip to list tools).
//
// Duplicate tool names across sources keep the first registration; later
// collisions are dropped with a warning so the exported manifest stays
// deterministic.
func NewCollection(ctx context.Context, opts ...CollectionOption) *Collection {
	var options collectionOptions
	for _, opt := range opts {
		opt(&options)
	}

	c := &Collection{
		tools:   make(map[string]CallableTool),
		sources: make(map[string]Source),
		sets:    options.sets,
	}
	for _, e := range options.entries {
		c.add(e.Tool, Source{Kind: SourceNode, Name: e.NodeName})
	}
	for _, r := range options.retrievers {
		t := NewRetrievalTool(RetrievalToolName(r.NodeName), r.Description, r.Retriever)
		c.add(t, Source{Kind: SourceRetriever, Name: r.NodeName})
	}
	for _, set := range options.sets {
		src := Source{Kind: SourceToolSet, Name: set.Name()}
		for _, t := range set.Tools(ctx) {
			callable, ok := t.(CallableTool)
			if !ok {
				log.Warnf("tool set %s exposes non-callable tool, skipped", set.Name())
				continue
			}
			c.add(callable, src)
		}
	}
	return c
}

func (c *Collection) add(t CallableTool, src Source) {
	if t == nil {
		return
	}
	decl := t.Declaration()
	if decl == nil || decl.Name == "" {
		log.Warnf("tool from %s %s has no name, skipped", src.Kind, src.Name)
		return
	}
	if existing, ok := c.sources[decl.Name]; ok {
		log.Warnf("duplicate tool name %q from %s %s ignored, kept the one from %s %s",
			decl.Name, src.Kind, src.Name, existing.Kind, existing.Name)
		return
	}
	c.tools[decl.Name] = t
	c.sources[decl.Name] = src
	c.order = append(c.order, decl.Name)
}

// Len returns the number of tools in the collection.
func (c *Collection) Len() int {
	return len(c.order)
}

// Names returns the tool names in registration order.
func (c *Collection) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Declarations exports the tool schemas in registration order, ready to hand
// to a model request.
func (c *Collection) Declarations() []*Declaration {
	decls := make([]*Declaration, 0, len(c.order))
	for _, name := range c.order {
		decls = append(decls, c.tools[name].Declaration())
	}
	return decls
}

// Get returns the named tool.
func (c *Collection) Get(name string) (CallableTool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Source returns the origin of the named tool.
func (c *Collection) Source(name string) (Source, bool) {
	src, ok := c.sources[name]
	return src, ok
}

// Dispatch executes the named tool with raw JSON arguments. It never panics
// and never returns a Go error: unknown names, argument failures and tool
// failures all come back as a failed envelope the loop can feed to the model.
func (c *Collection) Dispatch(ctx context.Context, name string, rawArgs []byte) ExecutionResult {
	t, ok := c.tools[name]
	if !ok {
		return NewExecutionError(ErrorKindNotFound, "tool %q not found", name)
	}
	return Invoke(ctx, t, rawArgs)
}

// Close releases resources held by the collection's tool sets.
func (c *Collection) Close() error {
	var errs []error
	for _, set := range c.sets {
		if err := set.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
