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
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	itelemetry "trpc.group/trpc-go/trpc-flow-go/internal/telemetry"
	ametric "trpc.group/trpc-go/trpc-flow-go/telemetry/metric"
)

// recordInvocationMetrics reports loop iterations and token spend for one
// finished invocation. Instruments come from the global meter, so this is a
// no-op until telemetry export is started.
func recordInvocationMetrics(ctx context.Context, agentName string, result *InvocationResult) {
	attrs := metric.WithAttributes(
		attribute.String("agent", agentName),
		attribute.Bool("success", result.Success),
	)

	if iterations, err := ametric.Meter.Int64Counter(
		itelemetry.MetricAgentIterations,
		metric.WithDescription("Reasoning loop iterations per invocation"),
	); err == nil {
		iterations.Add(ctx, int64(result.Iterations), attrs)
	}

	if result.Usage == nil {
		return
	}
	if tokens, err := ametric.Meter.Int64Counter(
		itelemetry.MetricAgentTokens,
		metric.WithDescription("Total tokens consumed per invocation"),
	); err == nil {
		tokens.Add(ctx, int64(result.Usage.TotalTokens), attrs)
	}
}
