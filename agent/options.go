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
	"trpc.group/trpc-go/trpc-flow-go/event"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

const (
	defaultMaxIterations = 5
	defaultSystemMessage = "You are a helpful assistant."
	defaultInputField    = "chatInput"
)

// PromptSource selects where the user turn of an invocation comes from.
type PromptSource string

const (
	// PromptSourceUserInput reads the prompt from the input item, using the
	// configured input field.
	PromptSourceUserInput PromptSource = "userInput"

	// PromptSourceDefine uses the prompt text configured on the node.
	PromptSourceDefine PromptSource = "define"
)

// Option configures an Agent.
type Option func(*Agent)

// WithSystemMessage sets the system prompt. The tool directive is appended
// to it when tools are available.
func WithSystemMessage(message string) Option {
	return func(a *Agent) {
		a.systemMessage = message
	}
}

// WithMaxIterations caps the number of model calls per invocation. Values
// below one keep the default.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n >= 1 {
			a.maxIterations = n
		}
	}
}

// WithReturnIntermediateSteps includes the recorded tool invocations in the
// result.
func WithReturnIntermediateSteps(enabled bool) Option {
	return func(a *Agent) {
		a.returnIntermediateSteps = enabled
	}
}

// WithMultiTurnTools controls whether every tool call of one iteration
// executes. Disabled, only the first call runs and the rest receive skipped
// envelopes.
func WithMultiTurnTools(enabled bool) Option {
	return func(a *Agent) {
		a.multiTurnTools = enabled
	}
}

// WithPromptSource selects where the user prompt comes from.
func WithPromptSource(source PromptSource) Option {
	return func(a *Agent) {
		a.promptSource = source
	}
}

// WithPromptText fixes the user prompt to the given text instead of reading
// it from the input item.
func WithPromptText(text string) Option {
	return func(a *Agent) {
		a.promptText = text
		a.promptSource = PromptSourceDefine
	}
}

// WithInputField changes the input item field the prompt is read from when
// the source is PromptSourceUserInput.
func WithInputField(field string) Option {
	return func(a *Agent) {
		if field != "" {
			a.inputField = field
		}
	}
}

// WithObservationBudget caps the characters of one tool observation fed back
// into the conversation. Values below one keep the default.
func WithObservationBudget(chars int) Option {
	return func(a *Agent) {
		if chars >= 1 {
			a.observationBudget = chars
		}
	}
}

// WithRetryPolicy replaces the retry policy applied to model calls.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(a *Agent) {
		a.retry = policy
	}
}

// WithEventCallback registers the observer notified at iteration start, tool
// dispatch and completion.
func WithEventCallback(callback event.Callback) Option {
	return func(a *Agent) {
		a.callback = callback
	}
}

// WithGenerationConfig sets the generation parameters passed on every model
// request.
func WithGenerationConfig(config model.GenerationConfig) Option {
	return func(a *Agent) {
		a.genConfig = config
	}
}
