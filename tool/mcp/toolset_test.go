//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package mcp

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func stdioEchoConfig() ConnectionConfig {
	return ConnectionConfig{
		Transport: "stdio",
		Command:   "echo",
		Args:      []string{"hello"},
		Timeout:   2 * time.Second,
	}
}

func TestNewMCPToolSet(t *testing.T) {
	toolset := NewMCPToolSet(stdioEchoConfig())
	if toolset == nil {
		t.Fatal("expected toolset to be created")
	}

	if err := toolset.Close(); err != nil {
		t.Errorf("failed to close toolset: %v", err)
	}
}

func TestToolSet_Name(t *testing.T) {
	tests := []struct {
		name         string
		opts         []ToolSetOption
		expectedName string
	}{
		{
			name:         "default name",
			opts:         nil,
			expectedName: "mcp",
		},
		{
			name:         "custom name",
			opts:         []ToolSetOption{WithName("custom-mcp")},
			expectedName: "custom-mcp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toolset := NewMCPToolSet(stdioEchoConfig(), tt.opts...)
			if toolset.Name() != tt.expectedName {
				t.Errorf("expected name %q, got %q", tt.expectedName, toolset.Name())
			}
			_ = toolset.Close()
		})
	}
}

func TestNewMCPToolSet_DefaultClientInfo(t *testing.T) {
	config := stdioEchoConfig()
	// ClientInfo intentionally unset.
	toolset := NewMCPToolSet(config)

	if toolset.config.connectionConfig.ClientInfo.Name != "trpc-flow-go" {
		t.Errorf("expected default client info name 'trpc-flow-go', got %q",
			toolset.config.connectionConfig.ClientInfo.Name)
	}
	_ = toolset.Close()
}

func TestNewMCPToolSet_WithMultipleOptions(t *testing.T) {
	filter := NewIncludeFilter("tool1", "tool2")
	toolset := NewMCPToolSet(stdioEchoConfig(),
		WithName("test-toolset"),
		WithToolFilter(filter),
		WithSessionReconnect(SessionReconnectConfig{
			EnableAutoReconnect:  true,
			MaxReconnectAttempts: 5,
		}),
	)

	if toolset.Name() != "test-toolset" {
		t.Errorf("expected name 'test-toolset', got %q", toolset.Name())
	}
	if toolset.config.toolFilter == nil {
		t.Error("expected tool filter to be set")
	}
	if toolset.config.reconnect.MaxReconnectAttempts != 5 {
		t.Errorf("expected max reconnect attempts 5, got %d",
			toolset.config.reconnect.MaxReconnectAttempts)
	}
	_ = toolset.Close()
}

func TestToolSet_Close_MultipleClose(t *testing.T) {
	toolset := NewMCPToolSet(stdioEchoConfig())

	if err := toolset.Close(); err != nil {
		t.Errorf("expected no error on first close, got: %v", err)
	}
	if err := toolset.Close(); err != nil {
		t.Errorf("expected no error on second close, got: %v", err)
	}
}

func TestSessionManager_IsConnected(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, SessionReconnectConfig{})

	if manager.isConnected() {
		t.Error("expected manager to be not connected initially")
	}

	manager.mu.Lock()
	manager.connected = true
	manager.initialized = true
	manager.mu.Unlock()

	if !manager.isConnected() {
		t.Error("expected manager to be connected after setting flags")
	}

	manager.mu.Lock()
	manager.initialized = false
	manager.mu.Unlock()

	if manager.isConnected() {
		t.Error("expected manager to be not connected when not initialized")
	}
}

func TestSessionManager_CallTool_ClientNil(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, SessionReconnectConfig{})

	_, err := manager.callTool(context.Background(), "test-tool", map[string]any{})
	if err == nil {
		t.Fatal("expected error when client is nil")
	}
	if !strings.Contains(err.Error(), "transport is closed") {
		t.Errorf("expected 'transport is closed' error, got: %v", err)
	}
}

func TestSessionManager_CloseWhenNotConnected(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, SessionReconnectConfig{})

	if err := manager.close(); err != nil {
		t.Errorf("expected no error when closing unconnected manager, got: %v", err)
	}
}

func TestSessionManager_CreateTimeoutContext_NoTimeout(t *testing.T) {
	config := stdioEchoConfig()
	config.Timeout = 0
	manager := newMCPSessionManager(config, nil, SessionReconnectConfig{})

	ctx := context.Background()
	timeoutCtx, cancel := manager.createTimeoutContext(ctx)
	defer cancel()

	if _, hasDeadline := timeoutCtx.Deadline(); hasDeadline {
		t.Error("expected no deadline when timeout is not configured")
	}
	if timeoutCtx != ctx {
		t.Error("expected same context to be returned when no timeout is configured")
	}
}

func TestSessionManager_CreateTimeoutContext_WithTimeout(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, SessionReconnectConfig{})

	timeoutCtx, cancel := manager.createTimeoutContext(context.Background())
	defer cancel()

	if _, hasDeadline := timeoutCtx.Deadline(); !hasDeadline {
		t.Error("expected deadline when timeout is configured")
	}
}

func TestSessionManager_ShouldAttemptSessionReconnect(t *testing.T) {
	tests := []struct {
		name            string
		config          SessionReconnectConfig
		err             error
		shouldReconnect bool
	}{
		{
			name:            "zero config disables reconnect",
			config:          SessionReconnectConfig{},
			err:             fmt.Errorf("session_expired: test"),
			shouldReconnect: false,
		},
		{
			name: "disabled reconnect",
			config: SessionReconnectConfig{
				EnableAutoReconnect:  false,
				MaxReconnectAttempts: 3,
			},
			err:             fmt.Errorf("session_expired: test"),
			shouldReconnect: false,
		},
		{
			name:            "nil error",
			config:          defaultSessionReconnect,
			err:             nil,
			shouldReconnect: false,
		},
		{
			name:            "connection reset error",
			config:          defaultSessionReconnect,
			err:             fmt.Errorf("connection reset by peer"),
			shouldReconnect: true,
		},
		{
			name:            "not initialized error",
			config:          defaultSessionReconnect,
			err:             fmt.Errorf("not initialized"),
			shouldReconnect: true,
		},
		{
			name:            "unrelated error",
			config:          defaultSessionReconnect,
			err:             fmt.Errorf("invalid argument"),
			shouldReconnect: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := newMCPSessionManager(stdioEchoConfig(), nil, tt.config)
			got := manager.shouldAttemptSessionReconnect(tt.err)
			if got != tt.shouldReconnect {
				t.Errorf("expected shouldAttemptSessionReconnect=%v, got %v for error: %v",
					tt.shouldReconnect, got, tt.err)
			}
		})
	}
}

func TestSessionManager_ExecuteWithSessionReconnect_NonReconnectableError(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, defaultSessionReconnect)

	callCount := 0
	operation := func() error {
		callCount++
		return fmt.Errorf("invalid argument")
	}

	err := manager.executeWithSessionReconnect(context.Background(), operation)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if callCount != 1 {
		t.Errorf("expected operation to run exactly once, got %d", callCount)
	}
}

func TestSessionManager_ExecuteWithSessionReconnect_ReconnectDisabled(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, SessionReconnectConfig{})

	callCount := 0
	operation := func() error {
		callCount++
		return fmt.Errorf("session_expired: test")
	}

	err := manager.executeWithSessionReconnect(context.Background(), operation)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if callCount != 1 {
		t.Errorf("expected operation to run exactly once, got %d", callCount)
	}
}

func TestSessionManager_ExecuteWithSessionReconnect_MaxAttempts(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, SessionReconnectConfig{
		EnableAutoReconnect:  true,
		MaxReconnectAttempts: 2,
	})

	callCount := 0
	operation := func() error {
		callCount++
		return fmt.Errorf("session_expired: test")
	}

	// Reconnection never succeeds against a plain echo process, so the
	// operation must not be retried and the original error comes back.
	err := manager.executeWithSessionReconnect(context.Background(), operation)
	if err == nil {
		t.Fatal("expected error after max attempts")
	}
	if !strings.Contains(err.Error(), "session_expired") {
		t.Errorf("expected original error to be returned, got: %v", err)
	}
}

func TestSessionManager_ExecuteWithSessionReconnect_CancelledContext(t *testing.T) {
	manager := newMCPSessionManager(stdioEchoConfig(), nil, defaultSessionReconnect)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	operation := func() error {
		return fmt.Errorf("session_expired: test")
	}

	err := manager.executeWithSessionReconnect(ctx, operation)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !strings.Contains(err.Error(), "reconnection aborted") {
		t.Errorf("expected reconnection aborted error, got: %v", err)
	}
}
