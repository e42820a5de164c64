// Package observability provides OpenTelemetry integration for distributed tracing.
//
// # Architecture Decision: Local Collector Mode
//
// Spans are exported over OTLP HTTP to a collector on localhost instead
// of directly to a vendor endpoint. This decision was made because:
//
//   - A local collector buffers and retries, so the app never blocks on a vendor
//   - Lower latency (localhost vs internet roundtrip)
//   - The collector handles authentication - no vendor API keys in the app
//   - Any OTLP-compatible backend works (Jaeger, Tempo, Datadog Agent, otelcol)
//
// # Quick Start with Jaeger
//
// Run the all-in-one image with OTLP enabled:
//
//	docker run --rm -p 4318:4318 -p 16686:16686 jaegertracing/all-in-one:latest
//
// Then enable tracing in ~/.forge/config.yaml:
//
//	tracing:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  environment: "dev"
//	  service_name: "forge"
//
// Traces appear at http://localhost:16686 under the configured service name.
//
// # Troubleshooting
//
// Test the OTLP endpoint:
//
//	curl -v http://localhost:4318/v1/traces
//
// A collector that is down does not break the server: span export fails
// silently and the process keeps serving.
package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config for OTLP trace export.
type Config struct {
	// Endpoint is the collector's OTLP HTTP endpoint (default: localhost:4318)
	Endpoint string
	// Environment is the deployment environment (dev, staging, prod)
	Environment string
	// ServiceName is the service name shown on exported spans
	ServiceName string
}

// DefaultEndpoint is the default OTLP HTTP collector endpoint.
const DefaultEndpoint = "localhost:4318"

// Setup installs a global TracerProvider exporting spans to a local
// collector via OTLP HTTP.
//
// Returns a shutdown function that flushes pending spans. Exporter
// creation failure degrades to a no-op shutdown instead of an error:
// a missing collector must never stop the process from serving.
// If Endpoint is empty, uses DefaultEndpoint (localhost:4318).
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	// Set OTEL env vars for the SDK's default resource detector.
	// SAFETY: os.Setenv is not concurrent-safe, but Setup is called
	// exactly once during startup, before goroutines are spawned.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // localhost doesn't need TLS
	)
	if err != nil {
		slog.Warn("creating otlp exporter, tracing disabled", "error", err)
		return func(context.Context) error { return nil }, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)
	otel.SetTracerProvider(tp)

	slog.Debug("otlp tracing enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tp.Shutdown, nil
}
