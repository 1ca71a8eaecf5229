// Package telemetry starts trace and metric export together for callers
// that want one switch for both.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-flow-go/telemetry/metric"
	"trpc.group/trpc-go/trpc-flow-go/telemetry/trace"
)

// Start initializes trace and metric export with optional configuration.
// Endpoints fall back to the OTEL_EXPORTER_OTLP_* environment variables and
// finally to the local collector defaults.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}

	var traceOpts []trace.Option
	if options.tracesEndpoint != "" {
		traceOpts = append(traceOpts, trace.WithEndpoint(options.tracesEndpoint))
	}
	cleanTraces, err := trace.Start(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start trace export: %w", err)
	}

	var metricOpts []metric.Option
	if options.metricsEndpoint != "" {
		metricOpts = append(metricOpts, metric.WithEndpoint(options.metricsEndpoint))
	}
	cleanMetrics, err := metric.Start(ctx, metricOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to start metric export: %w", err), cleanTraces())
	}

	return func() error {
		return errors.Join(cleanTraces(), cleanMetrics())
	}, nil
}

// Option is a function that configures telemetry options.
type Option func(*options)

// options holds the configuration options for telemetry.
type options struct {
	tracesEndpoint  string
	metricsEndpoint string
}

// WithTracesEndpoint sets the traces endpoint(host and port) the Exporter will connect to.
// The provided endpoint should resemble "example.com:4317" (no scheme or path).
// If the OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT environment variable is set,
// and this option is not passed, that variable value will be used.
// If both environment variables are set, OTEL_EXPORTER_OTLP_TRACES_ENDPOINT will take precedence.
// If an environment variable is set, and this option is passed, this option will take precedence.
func WithTracesEndpoint(endpoint string) Option {
	return func(opts *options) {
		opts.tracesEndpoint = endpoint
	}
}

// WithMetricsEndpoint sets the metrics endpoint(host and port) the Exporter will connect to.
// The provided endpoint should resemble "example.com:4317" (no scheme or path).
// If the OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT environment variable is set,
// and this option is not passed, that variable value will be used.
// If both environment variables are set, OTEL_EXPORTER_OTLP_METRICS_ENDPOINT will take precedence.
// If an environment variable is set, and this option is passed, this option will take precedence.
func WithMetricsEndpoint(endpoint string) Option {
	return func(opts *options) {
		opts.metricsEndpoint = endpoint
	}
}
