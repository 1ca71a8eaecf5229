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
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-flow-go/retriever"
)

// defaultRetrievalLimit caps how many documents one retrieval tool call
// returns when the model does not ask for a specific count.
const defaultRetrievalLimit = 4

// retrievalRequest is the argument shape of a retrieval tool call.
type retrievalRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// retrievalResult is what a retrieval tool call returns to the model.
type retrievalResult struct {
	Documents []*retriever.Document `json:"documents"`
}

// retrievalTool exposes one retriever as a single-argument query tool,
// decoupling the reasoning loop from vector-store specifics.
type retrievalTool struct {
	retriever retriever.Retriever
	decl      *Declaration
}

// NewRetrievalTool wraps a retriever in a callable tool. The tool accepts a
// required "query" string and an optional "limit" integer.
func NewRetrievalTool(name, description string, r retriever.Retriever) CallableTool {
	if description == "" {
		description = "Searches a document store and returns the passages most relevant to the query."
	}
	return &retrievalTool{
		retriever: r,
		decl: &Declaration{
			Name:        name,
			Description: description,
			InputSchema: &Schema{
				Type:     "object",
				Required: []string{"query"},
				Properties: map[string]*Schema{
					"query": {
						Type:        "string",
						Description: "Natural language search query.",
					},
					"limit": {
						Type:        "integer",
						Description: "Maximum number of documents to return.",
					},
				},
			},
		},
	}
}

// Declaration implements the Tool interface.
func (t *retrievalTool) Declaration() *Declaration {
	return t.decl
}

// Call implements the CallableTool interface.
func (t *retrievalTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var req retrievalRequest
	if err := json.Unmarshal(jsonArgs, &req); err != nil {
		return nil, fmt.Errorf("invalid retrieval arguments: %w", err)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}
	result, err := t.retriever.Search(ctx, &retriever.Query{Text: req.Query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("retriever search failed: %w", err)
	}
	if result == nil {
		return retrievalResult{Documents: []*retriever.Document{}}, nil
	}
	return retrievalResult{Documents: result.Documents}, nil
}

// RetrievalToolName derives the exported tool name for a retriever supplied
// by the named workflow node, e.g. "Product Docs" becomes
// "search_product_docs".
func RetrievalToolName(nodeName string) string {
	return "search_" + sanitizeName(nodeName)
}

// sanitizeName lowers a workflow node name into the character set model
// providers accept for tool names.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '/':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "store"
	}
	return b.String()
}
