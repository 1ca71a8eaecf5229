package telemetry

import (
	"context"
	"testing"
)

// TestStartAndClean exercises the happy-path of Start and returned cleanup.
func TestStartAndClean(t *testing.T) {
	const (
		traceEP  = "localhost:4317"
		metricEP = "localhost:4318"
	)

	ctx := context.Background()
	clean, err := Start(ctx,
		WithTracesEndpoint(traceEP),
		WithMetricsEndpoint(metricEP),
	)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if clean == nil {
		t.Fatalf("expected non-nil cleanup function")
	}
	_ = clean() // Ignore cleanup error as no collector is running in tests.
}

// TestStartDefaults relies on the subpackage env-var fallbacks when no
// endpoint options are passed.
func TestStartDefaults(t *testing.T) {
	clean, err := Start(context.Background())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	_ = clean()
}
