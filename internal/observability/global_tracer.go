package observability

import (
	"context"
	"fmt"

	"grovaapp/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for every span the app starts
const TracerName = "grova"

var globalTracer trace.Tracer

// InitGlobalTracer binds the package tracer to the current global provider
func InitGlobalTracer() {
	globalTracer = otel.Tracer(TracerName)
}

// GetGlobalTracer returns the package tracer, creating it on first use
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		globalTracer = otel.Tracer(TracerName)
	}
	return globalTracer
}

// TraceFunction starts a span named "<serviceName>.<functionName>"
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// FinishSpan records *errPtr on the span, if set, and ends it. Meant for
// defer with a named error return.
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	if errPtr != nil && *errPtr != nil {
		span.RecordError(*errPtr)
		span.SetStatus(codes.Error, (*errPtr).Error())
	}
	span.End()
}

func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

func TraceServiceFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "service", functionName, attributes...)
}

func TraceBackendFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "backend", functionName, attributes...)
}

func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

func AttributeProjectID(id string) attribute.KeyValue {
	return attribute.String("project.id", id)
}

func AttributeFeedbackID(id string) attribute.KeyValue {
	return attribute.String("feedback.id", id)
}

func AttributeStatus(status models.FeedbackStatus) attribute.KeyValue {
	return attribute.String("feedback.status", string(status))
}

func AttributeMode(mode models.Mode) attribute.KeyValue {
	return attribute.String("project.mode", string(mode))
}

func AttributeTemplateID(id string) attribute.KeyValue {
	return attribute.String("template.id", id)
}

func AttributeActionType(actionType string) attribute.KeyValue {
	return attribute.String("action.type", actionType)
}

func AttributeBackend(name string) attribute.KeyValue {
	return attribute.String("backend", name)
}

func AttributeCount(n int) attribute.KeyValue {
	return attribute.Int("count", n)
}
