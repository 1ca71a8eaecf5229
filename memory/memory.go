//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package memory defines the conversation-memory contract a workflow memory
// node exposes to the agent. A memory handle is already bound to its session:
// the workflow wiring decides whose history it holds, the agent only loads
// it before the first model call and saves the completed turns after the
// final answer.
package memory

import (
	"context"

	"trpc.group/trpc-go/trpc-flow-go/model"
)

// Service stores and replays conversation history for one session.
type Service interface {
	// Load returns the stored history, oldest first. An empty slice means a
	// fresh conversation.
	Load(ctx context.Context) ([]model.Message, error)

	// Save appends completed turns to the history.
	Save(ctx context.Context, turns ...model.Message) error
}
