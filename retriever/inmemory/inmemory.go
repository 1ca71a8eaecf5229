//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory retriever backed by embedding
// similarity, with a keyword-overlap fallback when no embedder is configured.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-flow-go/embedder"
	"trpc.group/trpc-go/trpc-flow-go/retriever"
)

var (
	// errDocumentCannotBeNil is the error when the document is nil.
	errDocumentCannotBeNil = errors.New("document cannot be nil")
	// errDocumentIDCannotBeEmpty is the error when the document ID is empty.
	errDocumentIDCannotBeEmpty = errors.New("document ID cannot be empty")
	// errQueryCannotBeNil is the error when the query is nil.
	errQueryCannotBeNil = errors.New("query cannot be nil")

	// defaultLimit is the default maximum number of search results.
	defaultLimit = 10
)

var _ retriever.Retriever = (*Retriever)(nil)

// entry holds one indexed document together with its embedding vector.
// The vector is empty when no embedder is configured.
type entry struct {
	doc    *retriever.Document
	vector []float64
}

// Retriever implements retriever.Retriever using in-memory storage.
type Retriever struct {
	mu      sync.RWMutex
	entries map[string]*entry

	embedder embedder.Embedder
	limit    int
	name     string
}

// Option represents a functional option for configuring the Retriever.
type Option func(*Retriever)

// WithEmbedder sets the embedder used to index documents and queries.
// Without an embedder, search falls back to keyword overlap scoring.
func WithEmbedder(e embedder.Embedder) Option {
	return func(r *Retriever) {
		r.embedder = e
	}
}

// WithLimit sets the default maximum number of search results.
func WithLimit(limit int) Option {
	return func(r *Retriever) {
		if limit <= 0 {
			limit = defaultLimit
		}
		r.limit = limit
	}
}

// WithName sets the retriever name used in logs and tool attribution.
func WithName(name string) Option {
	return func(r *Retriever) {
		r.name = name
	}
}

// New creates a new in-memory retriever with the given options.
func New(opts ...Option) *Retriever {
	r := &Retriever{
		entries: make(map[string]*entry),
		limit:   defaultLimit,
		name:    "inmemory",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the retriever name.
func (r *Retriever) Name() string {
	return r.name
}

// AddDocument indexes one document. When an embedder is configured the
// document content is embedded at insert time.
func (r *Retriever) AddDocument(ctx context.Context, doc *retriever.Document) error {
	if doc == nil {
		return errDocumentCannotBeNil
	}
	if doc.ID == "" {
		return errDocumentIDCannotBeEmpty
	}

	var vector []float64
	if r.embedder != nil {
		var err error
		vector, err = r.embedder.GetEmbedding(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[doc.ID] = &entry{doc: cloneDocument(doc), vector: vector}
	return nil
}

// AddDocuments indexes a batch of documents, stopping at the first error.
func (r *Retriever) AddDocuments(ctx context.Context, docs []*retriever.Document) error {
	for _, doc := range docs {
		if err := r.AddDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDocument removes one document from the index.
func (r *Retriever) DeleteDocument(id string) error {
	if id == "" {
		return errDocumentIDCannotBeEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(r.entries, id)
	return nil
}

// Count returns the number of indexed documents.
func (r *Retriever) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Search implements retriever.Retriever.
func (r *Retriever) Search(ctx context.Context, query *retriever.Query) (*retriever.Result, error) {
	if query == nil {
		return nil, errQueryCannotBeNil
	}

	var queryVector []float64
	if r.embedder != nil {
		var err error
		queryVector, err = r.embedder.GetEmbedding(ctx, query.Text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []*retriever.Document
	for _, e := range r.entries {
		var score float64
		if len(queryVector) > 0 {
			// Skip entries whose embedding dimensions don't match.
			if len(e.vector) != len(queryVector) {
				continue
			}
			score = cosineSimilarity(queryVector, e.vector)
		} else {
			score = keywordOverlap(query.Text, e.doc.Content)
		}
		if score < query.MinScore {
			continue
		}
		scored := cloneDocument(e.doc)
		scored.Score = score
		docs = append(docs, scored)
	}

	// Sort by score (descending).
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})

	limit := query.Limit
	if limit <= 0 {
		limit = r.limit
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}

	return &retriever.Result{Documents: docs}, nil
}

func cloneDocument(doc *retriever.Document) *retriever.Document {
	clone := &retriever.Document{
		ID:      doc.ID,
		Content: doc.Content,
		Score:   doc.Score,
	}
	if doc.Metadata != nil {
		clone.Metadata = make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// keywordOverlap scores a document by the fraction of query terms it contains.
func keywordOverlap(query, content string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0.0
	}
	haystack := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
