//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package agent implements the tool-calling reasoning loop executed by the
// AI agent workflow node. Capabilities (model, memory, tools, retrievers)
// are resolved per input row and passed in; each invocation owns its
// conversation and tool collection and shares nothing with other rows.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-flow-go/event"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/memory"
	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/provider"
	"trpc.group/trpc-go/trpc-flow-go/workflow"
)

// Agent holds the node-level configuration of one AI agent node. It is
// immutable after New and safe for concurrent invocations.
type Agent struct {
	name                    string
	systemMessage           string
	maxIterations           int
	returnIntermediateSteps bool
	multiTurnTools          bool
	promptSource            PromptSource
	promptText              string
	inputField              string
	observationBudget       int
	retry                   RetryPolicy
	callback                event.Callback
	genConfig               model.GenerationConfig
}

// New creates an agent with the given name and options.
func New(name string, opts ...Option) *Agent {
	a := &Agent{
		name:              name,
		systemMessage:     defaultSystemMessage,
		maxIterations:     defaultMaxIterations,
		multiTurnTools:    true,
		promptSource:      PromptSourceUserInput,
		inputField:        defaultInputField,
		observationBudget: defaultObservationBudget,
		retry:             DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent's configured name.
func (a *Agent) Name() string {
	return a.name
}

// Invoke runs the reasoning loop for one input row against the resolved
// capabilities. Operational failures, e.g. the model staying unreachable
// through every retry, come back as a structured result with Success=false;
// the error return is reserved for invariant violations such as a missing
// model handle.
func (a *Agent) Invoke(ctx context.Context, row workflow.Item, resolved *provider.Resolved) (*InvocationResult, error) {
	if resolved == nil || resolved.Model == nil {
		return nil, errors.New("agent: resolved model is required")
	}

	inv := &invocation{
		id:         uuid.New().String(),
		resolved:   resolved,
		collection: resolved.Collection(ctx),
	}

	var result *InvocationResult
	if query, err := a.userPrompt(row); err != nil {
		result = a.failure(inv, 0, err)
	} else {
		inv.query = query
		history := a.loadHistory(ctx, resolved.Memory)
		inv.messages = a.newConversation(query, history, inv.collection.Declarations())
		result = a.run(ctx, inv)
		if result.Success {
			a.saveTurns(ctx, inv, result.Message)
		}
	}

	recordInvocationMetrics(ctx, a.name, result)
	completionOpts := []event.Option{event.WithIteration(result.Iterations)}
	if result.Error != "" {
		completionOpts = append(completionOpts, event.WithError(errors.New(result.Error)))
	}
	a.callback.Emit(event.New(inv.id, event.PhaseCompletion, completionOpts...))
	return result, nil
}

// userPrompt extracts the user turn for one row: the configured text when
// the prompt is defined on the node, otherwise the row's input field.
func (a *Agent) userPrompt(row workflow.Item) (string, error) {
	if a.promptSource == PromptSourceDefine {
		if isBlank(a.promptText) {
			return "", errors.New("prompt text is empty")
		}
		return a.promptText, nil
	}

	value, ok := row.JSON[a.inputField]
	if !ok {
		return "", errors.New("input item has no " + a.inputField + " field")
	}
	text, ok := value.(string)
	if !ok || isBlank(text) {
		return "", errors.New("input field " + a.inputField + " is not a non-empty string")
	}
	return text, nil
}

// loadHistory pulls the conversation window from the memory provider.
// Memory is optional: a load failure only degrades the invocation to an
// empty history.
func (a *Agent) loadHistory(ctx context.Context, mem memory.Service) []model.Message {
	if mem == nil {
		return nil
	}
	history, err := mem.Load(ctx)
	if err != nil {
		log.Warnf("agent %s: loading memory history failed: %v", a.name, err)
		return nil
	}
	return history
}

// saveTurns persists the user turn and the final answer to memory.
func (a *Agent) saveTurns(ctx context.Context, inv *invocation, answer string) {
	mem := inv.resolved.Memory
	if mem == nil {
		return
	}
	err := mem.Save(ctx, model.NewUserMessage(inv.query), model.NewAssistantMessage(answer))
	if err != nil {
		log.Warnf("agent %s: saving conversation turns failed: %v", a.name, err)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
