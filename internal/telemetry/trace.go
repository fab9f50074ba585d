package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span for a service operation.
//
// Usage in services:
//
//	ctx, span := telemetry.StartSpan(ctx, "vaultd/services/gateway", "gateway.GetSecret",
//	    attribute.String(telemetry.AttrVaultLabel, label),
//	    attribute.String(telemetry.AttrSecretKey, key),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records an error on the span and sets the span status to error.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span with optional attributes. Use for
// business events like denied authorization or failed credential checks.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Common attribute keys for vault operations. Secret values are never
// attached to spans, only their addresses.
const (
	AttrClientID   = "vault.client_id"
	AttrVaultLabel = "vault.label"
	AttrSecretKey  = "vault.secret_key"
	AttrPermission = "vault.permission"
	AttrOutcome    = "vault.outcome"
)
