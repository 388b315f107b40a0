// Package otel provides OpenTelemetry instrumentation utilities for envsync.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by every span envsync creates
const (
	AttrOrganizationID      = attribute.Key("envsync.organization_id")
	AttrSourceEnvironmentID = attribute.Key("envsync.source_environment_id")
	AttrTargetEnvironmentID = attribute.Key("envsync.target_environment_id")
	AttrResourceType        = attribute.Key("envsync.resource_type")
	AttrDryRun              = attribute.Key("envsync.dry_run")
	AttrResultCount         = attribute.Key("result.count")
	AttrDBOperation         = attribute.Key("db.operation")
)

// StartSpan starts a child span. A nil tracer yields the span already in ctx,
// so components built without telemetry need no special casing.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer != nil {
		return tracer.Start(ctx, name, opts...)
	}
	return ctx, trace.SpanFromContext(ctx)
}

// RecordError marks span as failed. The status message stays generic; the
// error itself is attached as an event.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
