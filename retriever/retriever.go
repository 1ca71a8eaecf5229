//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package retriever defines the contract a vector-store workflow node exposes
// to the agent: a single search operation over an already-indexed document
// store. The agent wraps every resolved retriever in a query tool, so the
// reasoning loop never touches vector-store specifics.
package retriever

import "context"

// Retriever performs relevance search over a document store.
type Retriever interface {
	// Search returns the documents most relevant to the query.
	Search(ctx context.Context, query *Query) (*Result, error)
}

// Query is a retriever search request.
type Query struct {
	// Text is the search query text.
	Text string

	// Limit caps the number of returned documents (optional, store default
	// applies when zero).
	Limit int

	// MinScore sets a minimum relevance score threshold (optional).
	MinScore float64
}

// Result holds the documents returned for one query, most relevant first.
type Result struct {
	Documents []*Document
}

// Document is one retrieved document with its relevance score.
type Document struct {
	// ID identifies the document within its store.
	ID string `json:"id,omitempty"`

	// Content is the document text handed to the model.
	Content string `json:"content"`

	// Score is the relevance score, higher is more relevant.
	Score float64 `json:"score"`

	// Metadata carries store-specific attributes, e.g. the source file.
	Metadata map[string]any `json:"metadata,omitempty"`
}
