//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package event carries invocation progress notifications to an optional
// observer callback.
package event

import (
	"time"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

// Phase identifies the loop boundary an event was emitted at.
type Phase string

const (
	// PhaseIterationStart fires before each model call.
	PhaseIterationStart Phase = "iteration.start"

	// PhaseToolDispatch fires after each tool execution.
	PhaseToolDispatch Phase = "tool.dispatch"

	// PhaseCompletion fires once per invocation, after the loop settles on
	// an outcome.
	PhaseCompletion Phase = "completion"
)

// Event is one progress notification for a running invocation.
type Event struct {
	// ID is the unique identifier of the event.
	ID string `json:"id"`

	// InvocationID ties the event to one agent invocation.
	InvocationID string `json:"invocationId"`

	// Phase is the loop boundary the event was emitted at.
	Phase Phase `json:"phase"`

	// Timestamp is the emission time.
	Timestamp time.Time `json:"timestamp"`

	// Iteration is the one-based loop iteration, zero for events emitted
	// outside the loop.
	Iteration int `json:"iteration,omitempty"`

	// ToolName names the dispatched tool on tool.dispatch events.
	ToolName string `json:"toolName,omitempty"`

	// ToolCallID pairs a tool.dispatch event to the model's tool call.
	ToolCallID string `json:"toolCallId,omitempty"`

	// Response carries the model output that triggered the event, if any.
	Response *model.Response `json:"response,omitempty"`

	// Error holds the failure description on completion events of failed
	// invocations.
	Error string `json:"error,omitempty"`
}

// New creates an event for one invocation at the given phase.
func New(invocationID string, phase Phase, opts ...Option) *Event {
	e := &Event{
		ID:           uuid.New().String(),
		InvocationID: invocationID,
		Phase:        phase,
		Timestamp:    time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clone creates a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Response = e.Response.Clone()
	return &clone
}

// Callback receives progress events. A nil Callback disables delivery.
type Callback func(*Event)

// Emit delivers the event to the callback. Nil callbacks and nil events are
// no-ops; a panicking observer is logged and does not interrupt the
// invocation.
func (cb Callback) Emit(e *Event) {
	if cb == nil || e == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("event callback panicked on %s event %s: %v", e.Phase, e.ID, r)
		}
	}()
	cb(e)
}
