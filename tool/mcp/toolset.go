//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package mcp provides MCP tool set implementation.
package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// sessionReconnectErrorPatterns defines error patterns that trigger session reconnection.
// Conservative approach: only reconnect for clear connection/session failures.
// Configuration errors (DNS) and potential performance issues (timeout) are excluded.
var sessionReconnectErrorPatterns = []string{
	"session_expired:",       // Explicit session expiration from transport layer
	"transport is closed",    // Transport layer closed
	"client not initialized", // MCP client not initialized
	"not initialized",        // Generic initialization error
	"connection refused",     // Server not reachable (possibly restarting)
	"connection reset",       // Connection reset by peer
	"EOF",                    // End of file (stream closed)
	"broken pipe",            // Broken connection
	"HTTP 404",               // Session not found on server
	"session not found",      // Explicit session not found error
}

// ToolSet exposes the tools of a remote MCP server as a tool set.
type ToolSet struct {
	config         toolSetConfig
	sessionManager *mcpSessionManager
	tools          []tool.Tool
	mu             sync.RWMutex
	name           string
}

// NewMCPToolSet creates a new MCP tool set with the given configuration.
func NewMCPToolSet(config ConnectionConfig, opts ...ToolSetOption) *ToolSet {
	// Apply default configuration.
	cfg := toolSetConfig{
		connectionConfig: config,
		mcpOptions:       []mcp.ClientOption{},
		reconnect:        defaultSessionReconnect,
		name:             "mcp",
	}

	// Apply user options.
	for _, opt := range opts {
		opt(&cfg)
	}

	// Set default client info if not provided.
	if cfg.connectionConfig.ClientInfo.Name == "" {
		cfg.connectionConfig.ClientInfo = defaultClientInfo
	}

	sessionManager := newMCPSessionManager(cfg.connectionConfig, cfg.mcpOptions, cfg.reconnect)

	return &ToolSet{
		config:         cfg,
		sessionManager: sessionManager,
		tools:          nil,
		name:           cfg.name,
	}
}

// Tools implements the tool.ToolSet interface. The tool list is refreshed
// from the server on each call; the cached list is returned when the
// refresh fails so a flaky server does not wipe out known tools.
func (ts *ToolSet) Tools(ctx context.Context) []tool.Tool {
	if err := ts.listTools(ctx); err != nil {
		log.Errorf("failed to refresh MCP tools: %v", err)
	}

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	result := make([]tool.Tool, len(ts.tools))
	copy(result, ts.tools)
	return result
}

// Close implements the tool.ToolSet interface.
func (ts *ToolSet) Close() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.sessionManager != nil {
		if err := ts.sessionManager.close(); err != nil {
			return fmt.Errorf("failed to close MCP session: %w", err)
		}
	}

	log.Debugf("MCP tool set %s closed", ts.name)
	return nil
}

// Name implements the tool.ToolSet interface.
func (ts *ToolSet) Name() string {
	return ts.name
}

// listTools connects to the MCP server and refreshes the tool list.
func (ts *ToolSet) listTools(ctx context.Context) error {
	// Ensure connection.
	if !ts.sessionManager.isConnected() {
		if err := ts.sessionManager.connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to MCP server: %w", err)
		}
	}

	// List tools from MCP server.
	mcpTools, err := ts.sessionManager.listTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tools from MCP server: %w", err)
	}

	// Convert MCP tools to the standard tool format.
	tools := make([]tool.Tool, 0, len(mcpTools))
	for _, mcpTool := range mcpTools {
		tools = append(tools, newMCPTool(mcpTool, ts.sessionManager))
	}

	// Apply tool filter if configured.
	if ts.config.toolFilter != nil {
		toolInfos := make([]ToolInfo, len(tools))
		for i, t := range tools {
			decl := t.Declaration()
			toolInfos[i] = ToolInfo{
				Name:        decl.Name,
				Description: decl.Description,
			}
		}

		filteredInfos := ts.config.toolFilter.Filter(ctx, toolInfos)
		filteredNames := make(map[string]bool, len(filteredInfos))
		for _, info := range filteredInfos {
			filteredNames[info.Name] = true
		}

		filteredTools := make([]tool.Tool, 0, len(filteredInfos))
		for _, t := range tools {
			if filteredNames[t.Declaration().Name] {
				filteredTools = append(filteredTools, t)
			}
		}
		tools = filteredTools
	}

	ts.mu.Lock()
	ts.tools = tools
	ts.mu.Unlock()

	log.Debugf("refreshed MCP tools for %s: %d available", ts.name, len(tools))
	return nil
}

// mcpSessionManager manages the MCP client connection and session.
type mcpSessionManager struct {
	config         ConnectionConfig
	mcpOptions     []mcp.ClientOption
	reconnect      SessionReconnectConfig
	client         mcp.Connector
	mu             sync.RWMutex
	connected      bool
	initialized    bool
	reconnectGroup singleflight.Group // Ensures only one reconnection happens at a time.
}

// newMCPSessionManager creates a new MCP session manager.
func newMCPSessionManager(config ConnectionConfig, mcpOptions []mcp.ClientOption, reconnect SessionReconnectConfig) *mcpSessionManager {
	return &mcpSessionManager{
		config:     config,
		mcpOptions: mcpOptions,
		reconnect:  reconnect,
	}
}

// connect establishes connection to the MCP server.
func (m *mcpSessionManager) connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	log.Debugf("connecting to MCP server via %s", m.config.Transport)

	client, err := m.createClient()
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}

	m.client = client
	m.connected = true

	// Initialize the session.
	if err := m.initialize(ctx); err != nil {
		m.connected = false
		if closeErr := client.Close(); closeErr != nil {
			log.Errorf("failed to close client after initialization failure: %v (init error: %v)", closeErr, err)
		}
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	return nil
}

// createClient creates the appropriate MCP client based on transport configuration.
func (m *mcpSessionManager) createClient() (mcp.Connector, error) {
	clientInfo := m.config.ClientInfo
	if clientInfo.Name == "" {
		clientInfo = defaultClientInfo
	}

	transportType, err := validateTransport(m.config.Transport)
	if err != nil {
		return nil, err
	}

	switch transportType {
	case transportStdio:
		config := mcp.StdioTransportConfig{
			ServerParams: mcp.StdioServerParameters{
				Command: m.config.Command,
				Args:    m.config.Args,
			},
			Timeout: m.config.Timeout,
		}
		return mcp.NewStdioClient(config, clientInfo)

	case transportSSE:
		return mcp.NewSSEClient(m.config.ServerURL, clientInfo, m.clientOptions()...)

	case transportStreamable:
		return mcp.NewClient(m.config.ServerURL, clientInfo, m.clientOptions()...)

	default:
		return nil, fmt.Errorf("unsupported transport: %s", m.config.Transport)
	}
}

// clientOptions assembles HTTP client options from headers and user-provided options.
func (m *mcpSessionManager) clientOptions() []mcp.ClientOption {
	var options []mcp.ClientOption

	if len(m.config.Headers) > 0 {
		headers := http.Header{}
		for k, v := range m.config.Headers {
			headers.Set(k, v)
		}
		options = append(options, mcp.WithHTTPHeaders(headers))
	}

	if len(m.mcpOptions) > 0 {
		options = append(options, m.mcpOptions...)
	}

	return options
}

// createTimeoutContext creates a context with timeout if configured and no existing deadline.
// Returns the context and a cancel function. The caller should defer the cancel function.
func (m *mcpSessionManager) createTimeoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.config.Timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			return context.WithTimeout(ctx, m.config.Timeout)
		}
	}
	return ctx, func() {}
}

// initialize initializes the MCP session.
func (m *mcpSessionManager) initialize(ctx context.Context) error {
	if m.initialized {
		return nil
	}

	initCtx, cancel := m.createTimeoutContext(ctx)
	defer cancel()
	initReq := &mcp.InitializeRequest{}
	initResp, err := m.client.Initialize(initCtx, initReq)
	if err != nil {
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	log.Debugf("MCP session initialized: server=%s version=%s protocol=%s",
		initResp.ServerInfo.Name, initResp.ServerInfo.Version, initResp.ProtocolVersion)

	m.initialized = true
	return nil
}

// listTools retrieves the list of available tools from the MCP server.
func (m *mcpSessionManager) listTools(ctx context.Context) ([]mcp.Tool, error) {
	var result []mcp.Tool

	operationErr := m.executeWithSessionReconnect(ctx, func() error {
		m.mu.RLock()
		defer m.mu.RUnlock()

		if m.client == nil {
			return fmt.Errorf("transport is closed")
		}

		listCtx, cancel := m.createTimeoutContext(ctx)
		defer cancel()
		listReq := &mcp.ListToolsRequest{}
		listResp, listErr := m.client.ListTools(listCtx, listReq)
		if listErr != nil {
			return fmt.Errorf("failed to list tools: %w", listErr)
		}

		result = listResp.Tools
		return nil
	})

	return result, operationErr
}

// callTool executes a tool call on the MCP server.
func (m *mcpSessionManager) callTool(ctx context.Context, name string, arguments map[string]any) ([]mcp.Content, error) {
	var result []mcp.Content

	operationErr := m.executeWithSessionReconnect(ctx, func() error {
		m.mu.RLock()
		defer m.mu.RUnlock()

		if m.client == nil {
			return fmt.Errorf("transport is closed")
		}

		toolCtx, cancel := m.createTimeoutContext(ctx)
		defer cancel()
		callReq := &mcp.CallToolRequest{}
		callReq.Params.Name = name
		callReq.Params.Arguments = arguments

		callResp, callErr := m.client.CallTool(toolCtx, callReq)
		if callErr != nil {
			log.Errorf("MCP tool call failed (name=%s): %v", name, callErr)
			return fmt.Errorf("failed to call tool %s: %w", name, callErr)
		}

		result = callResp.Content
		return nil
	})

	return result, operationErr
}

// close closes the MCP session and client connection.
func (m *mcpSessionManager) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected || m.client == nil {
		return nil
	}

	err := m.client.Close()
	m.connected = false
	m.initialized = false
	m.client = nil

	if err != nil {
		return fmt.Errorf("failed to close MCP client: %w", err)
	}
	return nil
}

// isConnected returns whether the session is connected and initialized.
func (m *mcpSessionManager) isConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected && m.initialized
}

// executeWithSessionReconnect executes an operation with automatic session reconnection support.
// Uses per-operation retry strategy: each operation gets independent reconnection attempts.
// If the operation fails with a session-expired error and session reconnection is enabled,
// it will attempt to recreate the session and retry the operation up to maxAttempts times.
func (m *mcpSessionManager) executeWithSessionReconnect(ctx context.Context, operation func() error) error {
	err := operation()
	if err == nil {
		return nil
	}

	if !m.shouldAttemptSessionReconnect(err) {
		return err
	}

	maxAttempts := m.reconnect.MaxReconnectAttempts

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("reconnection aborted: %w", ctx.Err())
		}

		log.Debugf("session loss detected, attempting reconnection (attempt=%d/%d)", attempt, maxAttempts)

		if reconnectErr := m.recreateSession(ctx); reconnectErr != nil {
			log.Errorf("session reconnection failed (attempt=%d/%d, reconnect_error=%v, original_error=%v)",
				attempt, maxAttempts, reconnectErr, err)

			if attempt >= maxAttempts {
				return err
			}
			continue
		}

		// Retry the operation after successful reconnection.
		err = operation()
		if err == nil {
			log.Debugf("operation succeeded after session reconnection (attempt=%d)", attempt)
			return nil
		}

		// Different error class after reconnection, stop retrying.
		if !m.shouldAttemptSessionReconnect(err) {
			return err
		}
	}

	log.Warnf("all session reconnection attempts exhausted (max_attempts=%d)", maxAttempts)
	return err
}

// shouldAttemptSessionReconnect determines if session reconnection should be attempted
// based on the error type and configuration.
func (m *mcpSessionManager) shouldAttemptSessionReconnect(err error) bool {
	if !m.reconnect.EnableAutoReconnect || m.reconnect.MaxReconnectAttempts <= 0 {
		return false
	}
	if err == nil {
		return false
	}

	errStr := err.Error()
	for _, pattern := range sessionReconnectErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// recreateSession recreates the MCP session by closing the old connection,
// creating a new client, and re-initializing the session.
// Uses singleflight so concurrent callers share a single reconnection.
func (m *mcpSessionManager) recreateSession(ctx context.Context) error {
	_, err, _ := m.reconnectGroup.Do("reconnect", func() (any, error) {
		return nil, m.doRecreateSession(ctx)
	})
	return err
}

// doRecreateSession performs the actual session recreation logic.
func (m *mcpSessionManager) doRecreateSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Close existing client if any.
	if m.client != nil {
		if closeErr := m.client.Close(); closeErr != nil {
			log.Warnf("failed to close old client during session recreation: %v", closeErr)
		}
		m.client = nil
	}

	// Reset connection state (set to true again on success).
	m.connected = false
	m.initialized = false

	client, err := m.createClient()
	if err != nil {
		return fmt.Errorf("failed to create new MCP client during session recreation: %w", err)
	}

	m.client = client
	m.connected = true

	if err := m.initialize(ctx); err != nil {
		m.connected = false
		if closeErr := client.Close(); closeErr != nil {
			log.Errorf("failed to close client after re-initialization failure: %v (init error: %v)", closeErr, err)
		}
		m.client = nil
		return fmt.Errorf("failed to re-initialize MCP session: %w", err)
	}

	return nil
}
