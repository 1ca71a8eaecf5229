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
	"strings"

	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/tool"
)

// newConversation builds the initial message list for one invocation: the
// system prompt (with a tool directive when tools exist), the memory history
// in its original order, then the user turn.
func (a *Agent) newConversation(query string, history []model.Message, decls []*tool.Declaration) []model.Message {
	system := a.systemMessage
	if directive := toolDirective(decls); directive != "" {
		system += "\n\n" + directive
	}

	messages := make([]model.Message, 0, len(history)+2)
	messages = append(messages, model.NewSystemMessage(system))
	messages = append(messages, history...)
	messages = append(messages, model.NewUserMessage(query))
	return messages
}

// toolDirective renders a short manifest of the available tools for the
// system prompt. Empty when no tools are available.
func toolDirective(decls []*tool.Declaration) string {
	if len(decls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("You can use the following tools:\n")
	for _, d := range decls {
		if d == nil || d.Name == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(d.Name)
		if d.Description != "" {
			b.WriteString(": ")
			b.WriteString(d.Description)
		}
		b.WriteByte('\n')
	}
	b.WriteString("Call a tool when it helps you answer; otherwise reply directly.")
	return b.String()
}

// appendAssistantTurn appends the assistant message carrying the raw tool
// calls of one iteration, keeping the call IDs for result pairing.
func appendAssistantTurn(messages []model.Message, content string, calls []model.ToolCall) []model.Message {
	msg := model.NewAssistantMessage(content)
	msg.ToolCalls = calls
	return append(messages, msg)
}
