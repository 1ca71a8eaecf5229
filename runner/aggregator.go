//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"strings"

	"trpc.group/trpc-go/trpc-flow-go/agent"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// Output is the aggregated node output over one batch of rows.
type Output struct {
	// Results holds one entry per input row, in input order.
	Results []*agent.InvocationResult `json:"results"`

	// Message concatenates the successful answers in row order.
	Message string `json:"message"`

	// Succeeded and Failed count the rows by outcome.
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// Usage sums token usage across all rows.
	Usage *model.Usage `json:"usage,omitempty"`

	// IntermediateSteps unions the recorded steps across rows, in row order.
	IntermediateSteps []agent.IntermediateStep `json:"intermediate_steps,omitempty"`
}

// Aggregator folds per-row invocation results into one node output. It is
// not safe for concurrent use; the runner adds results in row order after
// the batch settles.
type Aggregator struct {
	results []*agent.InvocationResult
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records one row's result. A failed row is kept like any other so the
// batch output stays one-to-one with the input rows.
func (a *Aggregator) Add(result *agent.InvocationResult) {
	if result == nil {
		return
	}
	a.results = append(a.results, result)
}

// Finalize builds the aggregated output: concatenated answers, summed
// usage and unioned intermediate steps.
func (a *Aggregator) Finalize() *Output {
	out := &Output{Results: a.results}

	var answers []string
	var usage model.Usage
	for _, result := range a.results {
		if result.Success {
			out.Succeeded++
			if result.Message != "" {
				answers = append(answers, result.Message)
			}
		} else {
			out.Failed++
		}
		if result.Usage != nil {
			usage.Add(result.Usage)
		}
		out.IntermediateSteps = append(out.IntermediateSteps, result.IntermediateSteps...)
	}

	out.Message = strings.Join(answers, "\n\n")
	if usage != (model.Usage{}) {
		out.Usage = &usage
	}
	return out
}
