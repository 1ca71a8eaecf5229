//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"encoding/json"
	"strings"

	"trpc.group/trpc-go/trpc-flow-go/log"
)

// Invoke executes one callable tool with raw JSON arguments and returns the
// normalized envelope. It never returns an error and never panics: argument
// failures, tool errors and tool panics all map to a failed envelope so a
// single bad call cannot abort the reasoning loop.
func Invoke(ctx context.Context, t CallableTool, rawArgs []byte) (result ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			name := "unknown"
			if decl := t.Declaration(); decl != nil {
				name = decl.Name
			}
			log.Errorf("tool %s panicked: %v", name, r)
			result = NewExecutionError(ErrorKindExecution, "tool panicked: %v", r)
		}
	}()

	args := map[string]any{}
	if len(rawArgs) > 0 && string(rawArgs) != "null" {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return NewExecutionError(ErrorKindInvalidArguments,
				"arguments are not a JSON object: %v", err)
		}
	}

	decl := t.Declaration()
	if decl == nil {
		return NewExecutionError(ErrorKindExecution, "tool has no declaration")
	}
	coerced, errs := ValidateAndCoerce(decl.InputSchema, args)
	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return NewExecutionError(ErrorKindInvalidArguments, "%s", strings.Join(msgs, "; "))
	}

	encoded, err := json.Marshal(coerced)
	if err != nil {
		return NewExecutionError(ErrorKindInvalidArguments,
			"cannot encode coerced arguments: %v", err)
	}

	data, err := t.Call(ctx, encoded)
	if err != nil {
		return NewExecutionError(ErrorKindExecution, "%v", err)
	}
	return NewExecutionResult(data)
}
