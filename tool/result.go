//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package tool

import "fmt"

// ErrorKind classifies why a tool execution produced no data.
type ErrorKind string

// Error kinds carried by ExecutionError.
const (
	// ErrorKindNotFound means the requested tool name is not in the collection.
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindInvalidArguments means the arguments failed validation or coercion.
	ErrorKindInvalidArguments ErrorKind = "invalid_arguments"
	// ErrorKindExecution means the tool ran and failed (error return or panic).
	ErrorKindExecution ErrorKind = "execution_error"
	// ErrorKindSkipped means the call was not executed, e.g. because
	// multi-turn tools are disabled for the invocation.
	ErrorKindSkipped ErrorKind = "skipped"
)

// ExecutionError describes a failed tool execution.
type ExecutionError struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return e.Message
}

// ExecutionResult is the normalized envelope every tool execution returns,
// regardless of whether the underlying tool succeeded, failed or panicked.
// Exactly one of Data and Error is meaningful: Data when OK is true, Error
// otherwise.
type ExecutionResult struct {
	OK    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Error *ExecutionError `json:"error,omitempty"`
}

// NewExecutionResult returns a successful envelope carrying data.
func NewExecutionResult(data any) ExecutionResult {
	return ExecutionResult{OK: true, Data: data}
}

// NewExecutionError returns a failed envelope of the given kind.
func NewExecutionError(kind ErrorKind, format string, args ...any) ExecutionResult {
	return ExecutionResult{
		OK: false,
		Error: &ExecutionError{
			Message: fmt.Sprintf(format, args...),
			Kind:    kind,
		},
	}
}
