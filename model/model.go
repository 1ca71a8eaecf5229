//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package model provides interfaces for working with LLMs.
package model

import "context"

// Model is the interface for all language models.
//
// Error Handling Strategy:
// This interface uses a dual-layer error handling approach:
//
// 1. Function-level errors (returned as `error`):
//   - Failures that prevent a request from being made at all
//   - Examples: nil request, unreachable endpoint, invalid parameters
//
// 2. Response-level errors (Response.Error field):
//   - Structured errors from the model service after communication succeeded
//   - Examples: API rate limits, content filtering, model errors
//   - The Error.Type field drives retry classification upstream
//
// Usage pattern:
//
//	response, err := model.GenerateContent(ctx, request)
//	if err != nil {
//	    // Handle function-level errors (could not communicate)
//	    return fmt.Errorf("failed to generate content: %w", err)
//	}
//	if response.Error != nil {
//	    // Handle API-level errors (communication succeeded, API returned error)
//	    return fmt.Errorf("API error: %s", response.Error.Message)
//	}
//	// Process successful response...
type Model interface {
	// GenerateContent runs a single completion over the given request and
	// blocks until the model produces a full response or fails.
	//
	// The returned Response may carry an Error field for API-level errors.
	GenerateContent(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a Model.
type Info struct {
	Name string
}
