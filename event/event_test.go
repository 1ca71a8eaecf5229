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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-flow-go/model"
)

func TestNew_Defaults(t *testing.T) {
	e := New("inv-1", PhaseIterationStart)

	require.NotEmpty(t, e.ID)
	require.Equal(t, "inv-1", e.InvocationID)
	require.Equal(t, PhaseIterationStart, e.Phase)
	require.False(t, e.Timestamp.IsZero())
	require.Zero(t, e.Iteration)
	require.Nil(t, e.Response)
}

func TestNew_Options(t *testing.T) {
	rsp := &model.Response{ID: "rsp-1"}
	e := New("inv-1", PhaseToolDispatch,
		WithIteration(2),
		WithToolCall("get_weather", "call-1"),
		WithResponse(rsp),
		WithError(errors.New("boom")),
	)

	require.Equal(t, 2, e.Iteration)
	require.Equal(t, "get_weather", e.ToolName)
	require.Equal(t, "call-1", e.ToolCallID)
	require.Same(t, rsp, e.Response)
	require.Equal(t, "boom", e.Error)
}

func TestNew_UniqueIDs(t *testing.T) {
	first := New("inv-1", PhaseCompletion)
	second := New("inv-1", PhaseCompletion)
	require.NotEqual(t, first.ID, second.ID)
}

func TestWithError_Nil(t *testing.T) {
	e := New("inv-1", PhaseCompletion, WithError(nil))
	require.Empty(t, e.Error)
}

func TestEvent_Clone(t *testing.T) {
	e := New("inv-1", PhaseCompletion, WithResponse(&model.Response{ID: "rsp-1"}))

	clone := e.Clone()
	require.Equal(t, e.ID, clone.ID)
	require.Equal(t, e.Response.ID, clone.Response.ID)

	clone.Response.ID = "changed"
	require.Equal(t, "rsp-1", e.Response.ID)

	var nilEvent *Event
	require.Nil(t, nilEvent.Clone())
}

func TestCallback_Emit(t *testing.T) {
	var received *Event
	cb := Callback(func(e *Event) { received = e })

	e := New("inv-1", PhaseIterationStart)
	cb.Emit(e)
	require.Same(t, e, received)
}

func TestCallback_Emit_NilSafe(t *testing.T) {
	var cb Callback
	require.NotPanics(t, func() { cb.Emit(New("inv-1", PhaseCompletion)) })

	cb = func(*Event) { t.Fatal("must not be called for nil event") }
	require.NotPanics(t, func() { cb.Emit(nil) })
}

func TestCallback_Emit_RecoversPanic(t *testing.T) {
	cb := Callback(func(*Event) { panic("observer bug") })
	require.NotPanics(t, func() { cb.Emit(New("inv-1", PhaseToolDispatch)) })
}
