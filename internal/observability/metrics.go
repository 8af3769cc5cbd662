package observability

import (
	"context"

	"grovaapp/internal/config"
	contextutils "grovaapp/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// Metrics holds the domain instruments. Instruments come from whatever meter
// provider is global when NewMetrics runs, so a disabled pipeline records
// into no-ops.
type Metrics struct {
	derivations    otelmetric.Int64Counter
	effectiveScore otelmetric.Float64Histogram
	actionsSent    otelmetric.Int64Counter
	upstreamErrors otelmetric.Int64Counter
}

// NewMetrics creates the app's instruments from provider, or from the global
// provider when provider is nil
func NewMetrics(provider otelmetric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(TracerName)

	derivations, err := meter.Int64Counter("grova.triage.derivations",
		otelmetric.WithDescription("Feedback items run through triage derivation"))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create derivations counter")
	}
	effectiveScore, err := meter.Float64Histogram("grova.triage.effective_score",
		otelmetric.WithDescription("Effective triage score of derived items"),
		otelmetric.WithExplicitBucketBoundaries(0, 2, 4, 5, 6, 7, 8, 9, 10))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create score histogram")
	}
	actionsSent, err := meter.Int64Counter("grova.actions.sent",
		otelmetric.WithDescription("Outbound actions sent or drafted"))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create actions counter")
	}
	upstreamErrors, err := meter.Int64Counter("grova.upstream.errors",
		otelmetric.WithDescription("Failed calls to the feedback API"))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create upstream error counter")
	}

	return &Metrics{
		derivations:    derivations,
		effectiveScore: effectiveScore,
		actionsSent:    actionsSent,
		upstreamErrors: upstreamErrors,
	}, nil
}

// RecordDerivation counts one derived item and its effective score
func (m *Metrics) RecordDerivation(ctx context.Context, mode string, effective float64) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("mode", mode))
	m.derivations.Add(ctx, 1, attrs)
	m.effectiveScore.Record(ctx, effective, attrs)
}

// RecordActionSent counts one outbound action by type and resulting status
func (m *Metrics) RecordActionSent(ctx context.Context, actionType, status string) {
	if m == nil {
		return
	}
	m.actionsSent.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("action.type", actionType),
		attribute.String("status", status),
	))
}

// RecordUpstreamError counts a failed upstream call
func (m *Metrics) RecordUpstreamError(ctx context.Context, method string, status int) {
	if m == nil {
		return
	}
	m.upstreamErrors.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
	))
}
