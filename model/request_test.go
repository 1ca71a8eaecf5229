//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleSystem, true},
		{RoleUser, true},
		{RoleAssistant, true},
		{RoleTool, true},
		{Role("moderator"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.role.IsValid(), "role %q", tt.role)
	}
}

func TestMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("be helpful")
	require.Equal(t, RoleSystem, sys.Role)
	require.Equal(t, "be helpful", sys.Content)

	usr := NewUserMessage("hello")
	require.Equal(t, RoleUser, usr.Role)

	asst := NewAssistantMessage("hi there")
	require.Equal(t, RoleAssistant, asst.Role)

	toolMsg := NewToolMessage("call-1", "get_weather", `{"temp": 20}`)
	require.Equal(t, RoleTool, toolMsg.Role)
	require.Equal(t, "call-1", toolMsg.ToolID)
	require.Equal(t, "get_weather", toolMsg.ToolName)
	require.Equal(t, `{"temp": 20}`, toolMsg.Content)
}
