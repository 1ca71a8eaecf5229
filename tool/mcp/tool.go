package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-flow-go/log"
	"trpc.group/trpc-go/trpc-flow-go/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// mcpTool implements the CallableTool interface for MCP tools.
type mcpTool struct {
	mcpToolRef     *mcp.Tool
	inputSchema    *tool.Schema
	sessionManager *mcpSessionManager
}

// newMCPTool creates a new MCP tool wrapper.
func newMCPTool(mcpToolData mcp.Tool, sessionManager *mcpSessionManager) *mcpTool {
	mcpTool := &mcpTool{
		mcpToolRef:     &mcpToolData,
		sessionManager: sessionManager,
	}

	// Convert MCP input schema to inner Schema.
	if mcpToolData.InputSchema != nil {
		mcpTool.inputSchema = convertMCPSchemaToSchema(mcpToolData.InputSchema)
	}

	return mcpTool
}

// Call implements the CallableTool interface.
func (t *mcpTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	log.Debugf("calling MCP tool %s", t.mcpToolRef.Name)

	// Parse raw arguments.
	var rawArguments map[string]any
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &rawArguments); err != nil {
			return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
		}
	} else {
		rawArguments = make(map[string]any)
	}

	content, err := t.sessionManager.callTool(ctx, t.mcpToolRef.Name, rawArguments)
	if err != nil {
		return nil, err
	}

	return flattenContent(content), nil
}

// flattenContent unwraps text-only MCP results into plain strings so that
// downstream consumers see the payload rather than content envelopes.
// Mixed or non-text content is returned as-is.
func flattenContent(contents []mcp.Content) any {
	texts := make([]string, 0, len(contents))
	for _, content := range contents {
		textContent, ok := content.(mcp.TextContent)
		if !ok {
			return contents
		}
		texts = append(texts, textContent.Text)
	}
	switch len(texts) {
	case 0:
		return contents
	case 1:
		return texts[0]
	default:
		return texts
	}
}

// Declaration implements the Tool interface.
func (t *mcpTool) Declaration() *tool.Declaration {
	schema := t.inputSchema
	if schema == nil {
		schema = &tool.Schema{Type: "object"}
	}
	return &tool.Declaration{
		Name:        t.mcpToolRef.Name,
		Description: t.mcpToolRef.Description,
		InputSchema: schema,
	}
}
