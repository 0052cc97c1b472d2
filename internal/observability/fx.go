package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/pcsengine/internal/observability/logger"
	"github.com/smallbiznis/pcsengine/internal/observability/metrics"
	"github.com/smallbiznis/pcsengine/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		NewConfig,
		telemetryConfigs,
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.NewEngineCollectors,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	// Nothing else depends on the tracer provider; force it so the global
	// provider is installed.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)

// TelemetryConfigs is every component config derived from Config.
type TelemetryConfigs struct {
	fx.Out

	Logger  logger.Config
	Gorm    logger.GormLoggerConfig
	Tracing tracing.Config
	Metrics metrics.Config
}

func telemetryConfigs(cfg Config) TelemetryConfigs {
	gormCfg := logger.DefaultGormLoggerConfig()
	if threshold := cfg.SlowThreshold(); threshold > 0 {
		gormCfg.SlowThreshold = threshold
	}
	return TelemetryConfigs{
		Logger: logger.Config{
			ServiceName:         cfg.ServiceName,
			Environment:         cfg.Environment,
			Version:             cfg.Version,
			Level:               cfg.LogLevel,
			Format:              cfg.LogFormat,
			Debug:               cfg.Debug(),
			IncludeCaller:       true,
			IncludeStackOnError: cfg.Debug(),
		},
		Gorm: gormCfg,
		Tracing: tracing.Config{
			Enabled:          cfg.TracingEnabled,
			ServiceName:      cfg.ServiceName,
			ServiceVersion:   cfg.Version,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.OTLPEndpoint,
			ExporterProtocol: cfg.OTLPProtocol,
			SamplingRatio:    cfg.SamplingRatio,
		},
		Metrics: metrics.Config{
			Enabled:            cfg.TracingEnabled,
			ExporterEndpoint:   cfg.OTLPEndpoint,
			ExporterProtocol:   cfg.OTLPProtocol,
			ServiceName:        cfg.ServiceName,
			Environment:        cfg.Environment,
			CalculationBuckets: cfg.LatencyBuckets(),
		},
	}
}
