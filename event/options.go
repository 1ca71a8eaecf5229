//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package event

import (
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// Option is a function that can be used to configure the Event.
type Option func(*Event)

// WithIteration sets the loop iteration the event belongs to.
func WithIteration(iteration int) Option {
	return func(e *Event) {
		e.Iteration = iteration
	}
}

// WithToolCall records the dispatched tool call on the event.
func WithToolCall(name, callID string) Option {
	return func(e *Event) {
		e.ToolName = name
		e.ToolCallID = callID
	}
}

// WithResponse attaches the model response that triggered the event.
func WithResponse(response *model.Response) Option {
	return func(e *Event) {
		e.Response = response
	}
}

// WithError records the failure description on the event.
func WithError(err error) Option {
	return func(e *Event) {
		if err != nil {
			e.Error = err.Error()
		}
	}
}
