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
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-flow-go/retriever"
)

// fakeTool is a configurable CallableTool for collection tests.
type fakeTool struct {
	decl *Declaration
	call func(ctx context.Context, args []byte) (any, error)
}

func (f *fakeTool) Declaration() *Declaration { return f.decl }

func (f *fakeTool) Call(ctx context.Context, args []byte) (any, error) {
	return f.call(ctx, args)
}

func newFakeTool(name string, call func(ctx context.Context, args []byte) (any, error)) *fakeTool {
	return &fakeTool{
		decl: &Declaration{
			Name:        name,
			Description: name + " tool",
			InputSchema: &Schema{
				Type:       "object",
				Required:   []string{"city"},
				Properties: map[string]*Schema{"city": {Type: "string"}},
			},
		},
		call: call,
	}
}

// fakeRetriever returns canned documents.
type fakeRetriever struct {
	docs []*retriever.Document
	err  error
}

func (f *fakeRetriever) Search(ctx context.Context, q *retriever.Query) (*retriever.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &retriever.Result{Documents: f.docs}, nil
}

// fakeSet is a static tool set.
type fakeSet struct {
	name   string
	tools  []Tool
	closed bool
}

func (f *fakeSet) Tools(ctx context.Context) []Tool { return f.tools }
func (f *fakeSet) Close() error                     { f.closed = true; return nil }
func (f *fakeSet) Name() string                     { return f.name }

func TestCollection_BuildFromThreeSources(t *testing.T) {
	t.Parallel()

	weather := newFakeTool("get_weather", func(ctx context.Context, args []byte) (any, error) {
		return "sunny", nil
	})
	mcpTool := newFakeTool("repo_search", func(ctx context.Context, args []byte) (any, error) {
		return "found", nil
	})
	set := &fakeSet{name: "github", tools: []Tool{mcpTool}}

	c := NewCollection(context.Background(),
		WithEntries(Entry{Tool: weather, NodeName: "Weather API"}),
		WithRetrievers(RetrieverEntry{
			Retriever: &fakeRetriever{},
			NodeName:  "Product Docs",
		}),
		WithToolSets(set),
	)

	require.Equal(t, 3, c.Len())
	require.Equal(t, []string{"get_weather", "search_product_docs", "repo_search"}, c.Names())

	src, ok := c.Source("get_weather")
	require.True(t, ok)
	require.Equal(t, Source{Kind: SourceNode, Name: "Weather API"}, src)

	src, ok = c.Source("search_product_docs")
	require.True(t, ok)
	require.Equal(t, Source{Kind: SourceRetriever, Name: "Product Docs"}, src)

	src, ok = c.Source("repo_search")
	require.True(t, ok)
	require.Equal(t, Source{Kind: SourceToolSet, Name: "github"}, src)

	decls := c.Declarations()
	require.Len(t, decls, 3)
	require.Equal(t, "get_weather", decls[0].Name)
}

func TestCollection_DuplicateNamesFirstWins(t *testing.T) {
	t.Parallel()

	first := newFakeTool("lookup", func(ctx context.Context, args []byte) (any, error) {
		return "first", nil
	})
	second := newFakeTool("lookup", func(ctx context.Context, args []byte) (any, error) {
		return "second", nil
	})

	c := NewCollection(context.Background(),
		WithEntries(
			Entry{Tool: first, NodeName: "Node A"},
			Entry{Tool: second, NodeName: "Node B"},
		),
	)

	require.Equal(t, 1, c.Len())
	res := c.Dispatch(context.Background(), "lookup", []byte(`{"city":"x"}`))
	require.True(t, res.OK)
	require.Equal(t, "first", res.Data)

	src, _ := c.Source("lookup")
	require.Equal(t, "Node A", src.Name)
}

func TestCollection_DispatchUnknownTool(t *testing.T) {
	t.Parallel()

	c := NewCollection(context.Background())
	res := c.Dispatch(context.Background(), "missing", nil)
	require.False(t, res.OK)
	require.Equal(t, ErrorKindNotFound, res.Error.Kind)
	require.Contains(t, res.Error.Message, "missing")
}

func TestCollection_DispatchToolErrorIsolated(t *testing.T) {
	t.Parallel()

	failing := newFakeTool("lookup_price", func(ctx context.Context, args []byte) (any, error) {
		return nil, errors.New("key not found: sku-42")
	})
	c := NewCollection(context.Background(), WithEntries(Entry{Tool: failing, NodeName: "Prices"}))

	res := c.Dispatch(context.Background(), "lookup_price", []byte(`{"city":"x"}`))
	require.False(t, res.OK)
	require.Equal(t, ErrorKindExecution, res.Error.Kind)
	require.Contains(t, res.Error.Message, "key not found")
}

func TestCollection_DispatchToolPanicIsolated(t *testing.T) {
	t.Parallel()

	panicking := newFakeTool("explode", func(ctx context.Context, args []byte) (any, error) {
		panic("boom")
	})
	c := NewCollection(context.Background(), WithEntries(Entry{Tool: panicking, NodeName: "Bad"}))

	var res ExecutionResult
	require.NotPanics(t, func() {
		res = c.Dispatch(context.Background(), "explode", []byte(`{"city":"x"}`))
	})
	require.False(t, res.OK)
	require.Equal(t, ErrorKindExecution, res.Error.Kind)
	require.Contains(t, res.Error.Message, "boom")
}

func TestCollection_DispatchValidatesArguments(t *testing.T) {
	t.Parallel()

	var received map[string]any
	echo := newFakeTool("echo", func(ctx context.Context, args []byte) (any, error) {
		received = map[string]any{}
		if err := json.Unmarshal(args, &received); err != nil {
			return nil, err
		}
		return received, nil
	})
	c := NewCollection(context.Background(), WithEntries(Entry{Tool: echo, NodeName: "Echo"}))

	// Missing required argument short-circuits before the tool runs.
	res := c.Dispatch(context.Background(), "echo", []byte(`{}`))
	require.False(t, res.OK)
	require.Equal(t, ErrorKindInvalidArguments, res.Error.Kind)
	require.Nil(t, received)

	// Unknown keys are dropped before invocation.
	res = c.Dispatch(context.Background(), "echo", []byte(`{"city":"sf","bogus":1}`))
	require.True(t, res.OK)
	require.Equal(t, map[string]any{"city": "sf"}, received)
}

func TestCollection_DispatchMalformedArguments(t *testing.T) {
	t.Parallel()

	echo := newFakeTool("echo", func(ctx context.Context, args []byte) (any, error) {
		return nil, nil
	})
	c := NewCollection(context.Background(), WithEntries(Entry{Tool: echo, NodeName: "Echo"}))

	res := c.Dispatch(context.Background(), "echo", []byte(`{"city":`))
	require.False(t, res.OK)
	require.Equal(t, ErrorKindInvalidArguments, res.Error.Kind)
}

func TestCollection_RetrievalToolSearch(t *testing.T) {
	t.Parallel()

	docs := []*retriever.Document{
		{ID: "d1", Content: "returns are accepted within 30 days", Score: 0.9},
	}
	c := NewCollection(context.Background(),
		WithRetrievers(RetrieverEntry{
			Retriever: &fakeRetriever{docs: docs},
			NodeName:  "Policy Store",
		}),
	)

	res := c.Dispatch(context.Background(), "search_policy_store", []byte(`{"query":"returns"}`))
	require.True(t, res.OK)
	out, ok := res.Data.(retrievalResult)
	require.True(t, ok)
	require.Len(t, out.Documents, 1)
	require.Equal(t, "d1", out.Documents[0].ID)
}

func TestCollection_RetrievalToolRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	c := NewCollection(context.Background(),
		WithRetrievers(RetrieverEntry{Retriever: &fakeRetriever{}, NodeName: "Store"}),
	)

	res := c.Dispatch(context.Background(), "search_store", []byte(`{"query":"   "}`))
	require.False(t, res.OK)
	require.Equal(t, ErrorKindExecution, res.Error.Kind)
}

func TestCollection_CloseClosesSets(t *testing.T) {
	t.Parallel()

	set := &fakeSet{name: "mcp"}
	c := NewCollection(context.Background(), WithToolSets(set))
	require.NoError(t, c.Close())
	require.True(t, set.closed)
}

func TestRetrievalToolName(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"Product Docs", "search_product_docs"},
		{"FAQ", "search_faq"},
		{"store-1", "search_store-1"},
		{"", "search_store"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, RetrievalToolName(c.in), "input %q", c.in)
	}
}

func TestInvoke_NilArguments(t *testing.T) {
	t.Parallel()

	optional := &fakeTool{
		decl: &Declaration{
			Name:        "ping",
			InputSchema: &Schema{Type: "object"},
		},
		call: func(ctx context.Context, args []byte) (any, error) {
			return fmt.Sprintf("args=%s", args), nil
		},
	}
	res := Invoke(context.Background(), optional, nil)
	require.True(t, res.OK)
	require.Equal(t, "args={}", res.Data)
}
