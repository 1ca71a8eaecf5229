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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEdgeKind_IsValid(t *testing.T) {
	for _, kind := range []EdgeKind{KindMain, KindModel, KindMemory, KindTool, KindRetriever, KindEmbedding} {
		require.True(t, kind.IsValid(), "kind %s", kind)
	}
	require.False(t, EdgeKind("webhook").IsValid())
	require.False(t, EdgeKind("").IsValid())
}

func TestGraph_AddNode(t *testing.T) {
	g := NewGraph()

	require.Error(t, g.AddNode(nil))
	require.Error(t, g.AddNode(&Node{Name: "missing id"}))

	require.NoError(t, g.AddNode(&Node{ID: "agent", Type: "aiAgent"}))
	require.Error(t, g.AddNode(&Node{ID: "agent", Type: "aiAgent"}), "duplicate ID must be rejected")

	node, ok := g.Node("agent")
	require.True(t, ok)
	require.Equal(t, "aiAgent", node.Type)

	_, ok = g.Node("missing")
	require.False(t, ok)
}

func TestGraph_Connect(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(&Node{ID: "model", Type: "openaiModel"}))
	require.NoError(t, g.AddNode(&Node{ID: "agent", Type: "aiAgent"}))

	require.Error(t, g.Connect("", "agent", KindModel))
	require.Error(t, g.Connect("agent", "agent", KindMain))
	require.Error(t, g.Connect("model", "agent", EdgeKind("bogus")))
	require.Error(t, g.Connect("ghost", "agent", KindModel))
	require.Error(t, g.Connect("model", "ghost", KindModel))

	require.NoError(t, g.Connect("model", "agent", KindModel))
}

func TestGraph_UpstreamNodes(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode(&Node{ID: "agent", Type: "aiAgent"}))
	require.NoError(t, g.AddNode(&Node{ID: "model", Type: "openaiModel"}))
	require.NoError(t, g.AddNode(&Node{ID: "calc", Type: "calculatorTool"}))
	require.NoError(t, g.AddNode(&Node{ID: "http", Type: "httpTool"}))
	require.NoError(t, g.AddNode(&Node{ID: "off", Type: "httpTool", Disabled: true}))

	require.NoError(t, g.Connect("model", "agent", KindModel))
	require.NoError(t, g.Connect("calc", "agent", KindTool))
	require.NoError(t, g.Connect("http", "agent", KindTool))
	require.NoError(t, g.Connect("off", "agent", KindTool))

	models := g.UpstreamNodes("agent", KindModel)
	require.Len(t, models, 1)
	require.Equal(t, "model", models[0].ID)

	// Tool providers keep connection order; disabled nodes are skipped.
	tools := g.UpstreamNodes("agent", KindTool)
	require.Len(t, tools, 2)
	require.Equal(t, "calc", tools[0].ID)
	require.Equal(t, "http", tools[1].ID)

	require.Empty(t, g.UpstreamNodes("agent", KindMemory))
	require.Empty(t, g.UpstreamNodes("missing", KindModel))
}

func TestState_SetAndGetItems(t *testing.T) {
	s := NewState()

	require.Nil(t, s.Items("model"), "unexecuted node has nil items")

	s.SetItems("model", []Item{{Provider: "handle"}})
	items := s.Items("model")
	require.Len(t, items, 1)
	require.Equal(t, "handle", items[0].Provider)

	// Items returns a copy, mutating it does not touch state.
	items[0].Provider = "mutated"
	require.Equal(t, "handle", s.Items("model")[0].Provider)

	// Executed with zero output is distinct from unexecuted.
	s.SetItems("empty", []Item{})
	require.NotNil(t, s.Items("empty"))
	require.Empty(t, s.Items("empty"))

	s.Clear("model")
	require.Nil(t, s.Items("model"))
}

func TestRegistry_RegisterAndExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	require.Error(t, r.Register("", func(context.Context, *Node, []Item) ([]Item, error) { return nil, nil }))
	require.Error(t, r.Register("calc", nil))

	require.NoError(t, r.Register("calc", func(_ context.Context, node *Node, _ []Item) ([]Item, error) {
		return []Item{{JSON: map[string]any{"node": node.ID}}}, nil
	}))
	require.Error(t, r.Register("calc", func(context.Context, *Node, []Item) ([]Item, error) { return nil, nil }),
		"duplicate type must be rejected")

	_, ok := r.Lookup("calc")
	require.True(t, ok)
	_, ok = r.Lookup("missing")
	require.False(t, ok)

	items, err := r.Execute(ctx, &Node{ID: "n1", Type: "calc"}, nil)
	require.NoError(t, err)
	require.Equal(t, "n1", items[0].JSON["node"])

	_, err = r.Execute(ctx, &Node{ID: "n2", Type: "missing"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no factory registered")

	_, err = r.Execute(ctx, nil, nil)
	require.Error(t, err)
}

func TestRegistry_FactoryError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("failing", func(context.Context, *Node, []Item) ([]Item, error) {
		return nil, fmt.Errorf("boom")
	}))
	_, err := r.Execute(context.Background(), &Node{ID: "n", Type: "failing"}, nil)
	require.ErrorContains(t, err, "boom")
}
