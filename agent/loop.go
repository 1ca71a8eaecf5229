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
	"context"
	"encoding/json"

	"trpc.group/trpc-go/trpc-flow-go/event"
	itelemetry "trpc.group/trpc-go/trpc-flow-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/provider"
	atrace "trpc.group/trpc-go/trpc-flow-go/telemetry/trace"
	"trpc.group/trpc-go/trpc-flow-go/tool"
)

// invocation carries the per-row state owned by one Invoke call.
type invocation struct {
	id         string
	query      string
	messages   []model.Message
	collection *tool.Collection
	resolved   *provider.Resolved
	steps      []IntermediateStep
	usage      model.Usage
}

// run drives the reasoning loop: call the model, execute requested tools,
// feed results back, repeat until the model answers without tool calls or
// the iteration cap is reached.
func (a *Agent) run(ctx context.Context, inv *invocation) *InvocationResult {
	var lastContent string
	modelName := inv.resolved.Model.Info().Name
	iterations := 0
	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		iterations = iteration
		a.callback.Emit(event.New(inv.id, event.PhaseIterationStart, event.WithIteration(iteration)))

		req := &model.Request{
			Messages:         inv.messages,
			GenerationConfig: a.genConfig,
			Tools:            inv.collection.Declarations(),
		}
		spanCtx, span := atrace.Tracer.Start(ctx, itelemetry.NewModelSpanName(modelName))
		rsp, err := a.generateWithRetry(spanCtx, inv.resolved.Model, req)
		itelemetry.TraceModelCall(span, inv.id, modelName, req, rsp)
		span.End()
		if err != nil {
			return a.failure(inv, iterations, err)
		}
		inv.usage.Add(rsp.Usage)

		if !rsp.IsToolCallResponse() {
			answer := rsp.Content()
			inv.messages = append(inv.messages, model.NewAssistantMessage(answer))
			return a.success(inv, iterations, answer)
		}

		choice := rsp.Choices[0]
		if choice.Message.Content != "" {
			lastContent = choice.Message.Content
		}
		inv.messages = appendAssistantTurn(inv.messages, choice.Message.Content, choice.Message.ToolCalls)
		a.executeToolCalls(ctx, inv, iteration, choice.Message.ToolCalls)
	}

	// Iteration cap: the last assistant content is the best-effort answer.
	log.Debugf("agent %s: invocation %s hit the iteration cap of %d", a.name, inv.id, a.maxIterations)
	return a.success(inv, iterations, lastContent)
}

// executeToolCalls dispatches the requested calls sequentially, appending
// one tool-result message per call ID so pairing holds before the next
// model call. With multi-turn tools disabled only the first call executes;
// the rest receive skipped envelopes.
func (a *Agent) executeToolCalls(ctx context.Context, inv *invocation, iteration int, calls []model.ToolCall) {
	for i, call := range calls {
		name := call.Function.Name
		callCtx, span := atrace.Tracer.Start(ctx, itelemetry.NewToolSpanName(name))
		var res tool.ExecutionResult
		if i > 0 && !a.multiTurnTools {
			res = tool.NewExecutionError(tool.ErrorKindSkipped,
				"call to %s skipped: multi-turn tool execution is disabled", name)
		} else {
			res = inv.collection.Dispatch(callCtx, name, call.Function.Arguments)
		}
		itelemetry.TraceToolCall(span, name, call.ID, call.Function.Arguments, &res)
		span.End()

		observation := a.observation(res, inv.query)
		inv.messages = append(inv.messages, model.NewToolMessage(call.ID, name, observation))
		inv.steps = append(inv.steps, IntermediateStep{
			Action:      Action{Tool: name, Input: decodeArguments(call.Function.Arguments)},
			Observation: observation,
		})
		a.callback.Emit(event.New(inv.id, event.PhaseToolDispatch,
			event.WithIteration(iteration), event.WithToolCall(name, call.ID)))
	}
}

// observation renders one execution result for the conversation. Failures
// keep the whole error envelope so the model can see and react to them.
func (a *Agent) observation(res tool.ExecutionResult, query string) string {
	if res.OK {
		return formatObservation(res.Data, query, a.observationBudget)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return res.Error.Error()
	}
	return string(raw)
}

// decodeArguments decodes raw call arguments for step recording, falling
// back to the raw text when the payload is not valid JSON.
func decodeArguments(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func (a *Agent) success(inv *invocation, iterations int, message string) *InvocationResult {
	return a.result(inv, iterations, message, true, nil)
}

func (a *Agent) failure(inv *invocation, iterations int, err error) *InvocationResult {
	log.Errorf("agent %s: invocation %s failed: %v", a.name, inv.id, err)
	return a.result(inv, iterations, "", false, err)
}

func (a *Agent) result(inv *invocation, iterations int, message string, success bool, err error) *InvocationResult {
	r := &InvocationResult{
		InvocationID: inv.id,
		Message:      message,
		Success:      success,
		Iterations:   iterations,
		Providers: ProviderInfo{
			Model:  inv.resolved.Model.Info().Name,
			Memory: inv.resolved.Memory != nil,
			Tools:  inv.collection.Names(),
		},
	}
	if a.returnIntermediateSteps {
		r.IntermediateSteps = inv.steps
	}
	if inv.usage != (model.Usage{}) {
		usage := inv.usage
		r.Usage = &usage
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
