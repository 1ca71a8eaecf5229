//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the shared constants and span helpers used by the
// public telemetry packages and the agent loop.
package telemetry

import (
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"trpc.group/trpc-go/trpc-flow-go/model"
	"trpc.group/trpc-go/trpc-flow-go/tool"
)

// telemetry service constants.
const (
	ServiceName      = "telemetry"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go-flow"
	InstrumentName   = "trpc.flow.go"

	SpanNameCallModel         = "call_model"
	SpanNamePrefixExecuteTool = "execute_tool"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// telemetry attributes constants.
var (
	KeyInvocationID  = "trpc.go.flow.invocation_id"
	KeyToolCallID    = "trpc.go.flow.tool_call_id"
	KeyModelRequest  = "trpc.go.flow.model_request"
	KeyModelResponse = "trpc.go.flow.model_response"
)

// MetricAgentIterations counts loop iterations per invocation.
const MetricAgentIterations = "trpc.go.flow.agent.iterations"

// MetricAgentTokens counts total tokens consumed per invocation.
const MetricAgentTokens = "trpc.go.flow.agent.tokens"

// NewModelSpanName returns the span name for one model call.
func NewModelSpanName(modelName string) string {
	if modelName == "" {
		return SpanNameCallModel
	}
	return fmt.Sprintf("%s %s", SpanNameCallModel, modelName)
}

// NewToolSpanName returns the span name for one tool dispatch.
func NewToolSpanName(toolName string) string {
	return fmt.Sprintf("%s %s", SpanNamePrefixExecuteTool, toolName)
}

// TraceModelCall records one model round trip on the span. The response may
// be nil when the call failed before producing one.
func TraceModelCall(span trace.Span, invocationID, modelName string, req *model.Request, rsp *model.Response) {
	span.SetAttributes(
		attribute.String("gen_ai.system", "trpc.go.flow"),
		attribute.String("gen_ai.operation.name", "chat"),
		attribute.String("gen_ai.request.model", modelName),
		attribute.String(KeyInvocationID, invocationID),
	)

	if bts, err := json.Marshal(req); err == nil {
		span.SetAttributes(attribute.String(KeyModelRequest, string(bts)))
	} else {
		span.SetAttributes(attribute.String(KeyModelRequest, "<not json serializable>"))
	}

	if rsp == nil {
		return
	}
	if bts, err := json.Marshal(rsp); err == nil {
		span.SetAttributes(attribute.String(KeyModelResponse, string(bts)))
	} else {
		span.SetAttributes(attribute.String(KeyModelResponse, "<not json serializable>"))
	}
}

// TraceToolCall records one tool dispatch on the span. Arguments are the raw
// JSON the model produced; the result is the dispatch envelope.
func TraceToolCall(span trace.Span, toolName, callID string, args []byte, result *tool.ExecutionResult) {
	span.SetAttributes(
		attribute.String("gen_ai.system", "trpc.go.flow"),
		attribute.String("gen_ai.operation.name", "tool.execute"),
		attribute.String("gen_ai.tool.name", toolName),
		attribute.String(KeyToolCallID, callID),
		attribute.String("trpc.go.flow.tool_call_args", string(args)),
	)

	if bts, err := json.Marshal(result); err == nil {
		span.SetAttributes(attribute.String("trpc.go.flow.tool_response", string(bts)))
	} else {
		span.SetAttributes(attribute.String("trpc.go.flow.tool_response", "<not json serializable>"))
	}
}

// NewGRPCConn creates a new gRPC connection to the OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	// It connects the OpenTelemetry Collector through gRPC connection.
	// You can customize the endpoint using options or environment variables.
	conn, err := grpc.NewClient(endpoint,
		// Note the use of insecure transport here. TLS is recommended in production.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	return conn, err
}
