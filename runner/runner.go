//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package runner executes the agent node over a batch of input rows and
// aggregates the per-row results into one node output. Rows are isolated:
// capabilities are re-resolved and the conversation rebuilt per row, and one
// row's failure never aborts the rest of the batch.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"trpc.group/trpc-go/trpc-flow-go/agent"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/provider"
	"trpc.group/trpc-go/trpc-flow-go/workflow"
)

// Runner drives one agent node over batches of input rows.
type Runner struct {
	agent       *agent.Agent
	resolver    *provider.Resolver
	parallelism int
}

// Option configures a Runner.
type Option func(*Runner)

// WithParallelism bounds how many rows run concurrently. The default of one
// keeps rows strictly sequential; values below one keep the default.
func WithParallelism(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.parallelism = n
		}
	}
}

// New creates a runner for one agent and its capability resolver.
func New(a *agent.Agent, resolver *provider.Resolver, opts ...Option) *Runner {
	r := &Runner{
		agent:       a,
		resolver:    resolver,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run invokes the agent once per input row and aggregates the results in
// row order. Row failures come back inside the output; the error return
// covers only batch-level setup failures.
func (r *Runner) Run(ctx context.Context, agentNodeID string, rows []workflow.Item) (*Output, error) {
	results := make([]*agent.InvocationResult, len(rows))
	if r.parallelism <= 1 || len(rows) <= 1 {
		for i, row := range rows {
			results[i] = r.invokeRow(ctx, agentNodeID, row)
		}
	} else if err := r.runParallel(ctx, agentNodeID, rows, results); err != nil {
		return nil, err
	}

	agg := NewAggregator()
	for _, result := range results {
		agg.Add(result)
	}
	return agg.Finalize(), nil
}

// runParallel fans the rows out over a bounded worker pool, writing each
// result to its row's slot so output order matches input order.
func (r *Runner) runParallel(ctx context.Context, agentNodeID string, rows []workflow.Item, results []*agent.InvocationResult) error {
	pool, err := ants.NewPool(r.parallelism)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range rows {
		wg.Add(1)
		idx := i
		if err := pool.Submit(func() {
			defer wg.Done()
			results[idx] = r.invokeRow(ctx, agentNodeID, rows[idx])
		}); err != nil {
			wg.Done()
			results[idx] = rowFailure(fmt.Errorf("submit row %d: %w", idx, err))
		}
	}
	wg.Wait()
	return nil
}

// invokeRow resolves capabilities fresh for one row and runs the invocation.
// Resolution failures, e.g. no model connected, become structured row
// failures.
func (r *Runner) invokeRow(ctx context.Context, agentNodeID string, row workflow.Item) *agent.InvocationResult {
	resolved, err := r.resolver.ResolveAll(ctx, agentNodeID)
	if err != nil {
		log.Errorf("runner: resolving providers for agent %s failed: %v", r.agent.Name(), err)
		return rowFailure(err)
	}
	result, err := r.agent.Invoke(ctx, row, resolved)
	if err != nil {
		return rowFailure(err)
	}
	return result
}

func rowFailure(err error) *agent.InvocationResult {
	return &agent.InvocationResult{Success: false, Error: err.Error()}
}
