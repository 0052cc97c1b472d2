package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string

	// CalculationBuckets overrides the latency histogram buckets, in seconds.
	CalculationBuckets []float64
}

// Metrics exposes the engine's instruments. A nil *Metrics is a valid no-op
// recorder so services can be built without observability in tests.
type Metrics struct {
	calculations       metric.Int64Counter
	resolutions        metric.Int64Counter
	storeErrors        metric.Int64Counter
	calculatorFailures metric.Int64Counter
	snapshotFailures   metric.Int64Counter

	collectors *EngineCollectors
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New creates the engine instruments. collectors may be nil.
func New(cfg Config, provider metric.MeterProvider, collectors *EngineCollectors) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pcsengine"
	}
	meter := provider.Meter(name)

	calculations, err := meter.Int64Counter("pcsengine_calculations_total")
	if err != nil {
		return nil, err
	}
	resolutions, err := meter.Int64Counter("pcsengine_rate_resolutions_total")
	if err != nil {
		return nil, err
	}
	storeErrors, err := meter.Int64Counter("pcsengine_rate_store_errors_total")
	if err != nil {
		return nil, err
	}
	calculatorFailures, err := meter.Int64Counter("pcsengine_calculator_failures_total")
	if err != nil {
		return nil, err
	}
	snapshotFailures, err := meter.Int64Counter("pcsengine_snapshot_failures_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		calculations:       calculations,
		resolutions:        resolutions,
		storeErrors:        storeErrors,
		calculatorFailures: calculatorFailures,
		snapshotFailures:   snapshotFailures,
		collectors:         collectors,
	}, nil
}

// RecordCalculation counts a completed calculation and observes its latency.
func (m *Metrics) RecordCalculation(ctx context.Context, ruleVersion, level string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("rule_version", strings.TrimSpace(ruleVersion)),
		attribute.String("confidence_level", strings.TrimSpace(level)),
	)
	m.calculations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.collectors.observeCalculation(level, elapsed)
}

// RecordResolution counts a rate resolution by rate type and outcome.
func (m *Metrics) RecordResolution(ctx context.Context, rateType, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("rate_type", strings.TrimSpace(rateType)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.resolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.collectors.incResolution(rateType, outcome)
}

// RecordStoreError counts a failed rate store query.
func (m *Metrics) RecordStoreError(ctx context.Context, rateType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("rate_type", strings.TrimSpace(rateType)))
	m.storeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCalculatorFailure counts a calculator that produced a degraded line.
func (m *Metrics) RecordCalculatorFailure(ctx context.Context, entitlementType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entitlement_type", strings.TrimSpace(entitlementType)))
	m.calculatorFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.collectors.incCalculatorFailure(entitlementType)
}

// RecordSnapshotFailure counts a snapshot that was dropped or failed to persist.
func (m *Metrics) RecordSnapshotFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.snapshotFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.collectors.incSnapshotFailure(reason)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"rate_type":        {},
	"outcome":          {},
	"entitlement_type": {},
	"rule_version":     {},
	"confidence_level": {},
	"reason":           {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
