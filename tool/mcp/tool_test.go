//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"context"
	"testing"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

func TestNewMCPTool(t *testing.T) {
	sessionManager := &mcpSessionManager{}
	mcpTool := newMCPTool(mcp.Tool{
		Name:        "simple_tool",
		Description: "A simple tool",
	}, sessionManager)

	if mcpTool == nil {
		t.Fatal("newMCPTool returned nil")
	}
	if mcpTool.mcpToolRef.Name != "simple_tool" {
		t.Errorf("expected name 'simple_tool', got %q", mcpTool.mcpToolRef.Name)
	}
	if mcpTool.inputSchema != nil {
		t.Error("expected inputSchema to be nil when server sends no schema")
	}
}

func TestMCPTool_Declaration(t *testing.T) {
	testCases := []struct {
		name         string
		mcpToolData  mcp.Tool
		expectedName string
		expectedDesc string
	}{
		{
			name: "basic tool",
			mcpToolData: mcp.Tool{
				Name:        "echo_tool",
				Description: "Echoes input",
			},
			expectedName: "echo_tool",
			expectedDesc: "Echoes input",
		},
		{
			name: "tool with empty description",
			mcpToolData: mcp.Tool{
				Name:        "no_desc_tool",
				Description: "",
			},
			expectedName: "no_desc_tool",
			expectedDesc: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sessionManager := &mcpSessionManager{}
			mcpTool := newMCPTool(tc.mcpToolData, sessionManager)

			decl := mcpTool.Declaration()
			if decl == nil {
				t.Fatal("Declaration() returned nil")
			}
			if decl.Name != tc.expectedName {
				t.Errorf("expected name %q, got %q", tc.expectedName, decl.Name)
			}
			if decl.Description != tc.expectedDesc {
				t.Errorf("expected description %q, got %q", tc.expectedDesc, decl.Description)
			}
			// Schema-less tools still expose an open object schema so
			// argument handling has something to validate against.
			if decl.InputSchema == nil || decl.InputSchema.Type != "object" {
				t.Errorf("expected object input schema fallback, got %+v", decl.InputSchema)
			}
		})
	}
}

func TestMCPTool_Call_InvalidJSON(t *testing.T) {
	sessionManager := &mcpSessionManager{}
	mcpTool := newMCPTool(mcp.Tool{
		Name:        "test_tool",
		Description: "Test tool",
	}, sessionManager)

	_, err := mcpTool.Call(context.Background(), []byte(`{invalid json}`))
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestMCPTool_Call_NoClient(t *testing.T) {
	sessionManager := &mcpSessionManager{}
	mcpTool := newMCPTool(mcp.Tool{
		Name:        "test_tool",
		Description: "Test tool",
	}, sessionManager)

	// Valid JSON parses fine; the call then fails on the missing transport.
	_, err := mcpTool.Call(context.Background(), []byte(`{"arg1": "value1", "arg2": 123}`))
	if err == nil {
		t.Error("expected error when no client is connected")
	}
}

func TestFlattenContent(t *testing.T) {
	singleText := []mcp.Content{mcp.NewTextContent("hello")}
	if got := flattenContent(singleText); got != "hello" {
		t.Errorf("expected single text to flatten to string, got %#v", got)
	}

	multiText := []mcp.Content{
		mcp.NewTextContent("first"),
		mcp.NewTextContent("second"),
	}
	texts, ok := flattenContent(multiText).([]string)
	if !ok || len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Errorf("expected multiple texts to flatten to []string, got %#v", flattenContent(multiText))
	}

	empty := []mcp.Content{}
	if _, ok := flattenContent(empty).([]mcp.Content); !ok {
		t.Errorf("expected empty content to pass through, got %#v", flattenContent(empty))
	}
}
