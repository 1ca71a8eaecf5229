//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// Action identifies the tool call an intermediate step executed.
type Action struct {
	// Tool is the dispatched tool name.
	Tool string `json:"tool"`

	// Input carries the call arguments as decoded JSON.
	Input any `json:"tool_input"`
}

// IntermediateStep records one tool invocation within a loop run.
type IntermediateStep struct {
	Action      Action `json:"action"`
	Observation string `json:"observation"`
}

// ProviderInfo describes the capabilities one invocation resolved.
type ProviderInfo struct {
	// Model is the resolved model identifier.
	Model string `json:"model"`

	// Memory reports whether a conversation-memory provider was connected.
	Memory bool `json:"memory"`

	// Tools lists the exported tool names in manifest order.
	Tools []string `json:"tools,omitempty"`
}

// InvocationResult is the per-row outcome of one agent invocation.
type InvocationResult struct {
	// InvocationID correlates the result with emitted progress events.
	InvocationID string `json:"invocation_id"`

	// Message is the final answer text. At the iteration cap it is the last
	// assistant content, best effort.
	Message string `json:"message"`

	// Success is false only when the row failed structurally, e.g. the model
	// stayed unreachable through every retry attempt.
	Success bool `json:"success"`

	// Iterations is the number of model calls made.
	Iterations int `json:"iterations"`

	// IntermediateSteps lists the recorded tool invocations. Populated only
	// when WithReturnIntermediateSteps is set.
	IntermediateSteps []IntermediateStep `json:"intermediate_steps,omitempty"`

	// Usage sums token usage over every model call of the invocation.
	Usage *model.Usage `json:"usage,omitempty"`

	// Providers describes the resolved capabilities for observability.
	Providers ProviderInfo `json:"providers"`

	// Error carries the failure description when Success is false.
	Error string `json:"error,omitempty"`
}
