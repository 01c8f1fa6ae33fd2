// Package telemetry wires OpenTelemetry tracing around close runs.
package telemetry

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "pr-issue-closer"

// Config holds the configuration for telemetry
type Config struct {
	Enabled  bool
	Endpoint string // OTLP/HTTP collector endpoint, e.g. http://localhost:4318
	Version  string
}

// Provider owns the tracer provider lifecycle. A nil or disabled Provider is
// valid and records nothing.
type Provider struct {
	enabled        bool
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
}

// NewProvider creates a new telemetry provider
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		log.Printf("Telemetry disabled")
		return &Provider{}, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(config.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(config.Version),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	log.Printf("Telemetry enabled, exporting to %s", config.Endpoint)

	return &Provider{
		enabled:        true,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}, nil
}

// Shutdown flushes pending spans and stops the tracer provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || !p.enabled {
		return nil
	}
	return p.tracerProvider.Shutdown(ctx)
}

// StartRun opens a span covering one close run. The returned function ends
// the span.
func (p *Provider) StartRun(ctx context.Context, runID string, prNumber int) (context.Context, func()) {
	if p == nil || !p.enabled {
		return ctx, func() {}
	}
	ctx, span := p.tracer.Start(ctx, "close_referenced_issues", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("pull_request.number", prNumber),
	))
	return ctx, func() { span.End() }
}

// RecordClose records one close attempt as a child span of the run
func (p *Provider) RecordClose(ctx context.Context, issueNumber int, err error) {
	if p == nil || !p.enabled {
		return
	}
	_, span := p.tracer.Start(ctx, "close_issue", trace.WithAttributes(
		attribute.Int("issue.number", issueNumber),
		attribute.Bool("issue.closed", err == nil),
	))
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

// NewRunID generates a unique ID for one close run
func NewRunID() string {
	return uuid.New().String()
}
