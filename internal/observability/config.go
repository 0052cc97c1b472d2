package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/pcsengine/internal/config"
)

const (
	defaultServiceName = "pcsengine"

	// Calculation latency buckets start here and end at the calculator
	// timeout, past which every job is degraded anyway.
	minLatencyBucket   = 5 * time.Millisecond
	latencyBucketCount = 10
)

// Config is the view of process and engine configuration the telemetry
// stack is built from.
type Config struct {
	ServiceName  string
	Environment  string
	Version      string
	OTLPEndpoint string
	config.ObservabilityConfig

	Development bool

	// CalculatorTimeout and StoreTimeout come from engine.yml at startup.
	CalculatorTimeout time.Duration
	StoreTimeout      time.Duration
}

func NewConfig(cfg config.Config, engine *config.EngineConfigHolder) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	rules := engine.Get()
	return Config{
		ServiceName:         serviceName,
		Environment:         strings.TrimSpace(cfg.Environment),
		Version:             strings.TrimSpace(cfg.AppVersion),
		OTLPEndpoint:        strings.TrimSpace(cfg.OTLPEndpoint),
		ObservabilityConfig: cfg.Observability,
		Development:         cfg.IsDevelopment(),
		CalculatorTimeout:   rules.CalculatorTimeout,
		StoreTimeout:        rules.StoreTimeout,
	}
}

func (c Config) Debug() bool {
	return strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") || c.Development
}

// SlowThreshold flags a rate store query as slow once it has used half of
// the store timeout, unless set explicitly.
func (c Config) SlowThreshold() time.Duration {
	if c.ObservabilityConfig.SlowQueryThreshold > 0 {
		return c.ObservabilityConfig.SlowQueryThreshold
	}
	if c.StoreTimeout > 0 {
		return c.StoreTimeout / 2
	}
	return 0
}

// LatencyBuckets spans the calculation histogram from 5ms to the calculator
// timeout. Nil leaves the collector defaults in place.
func (c Config) LatencyBuckets() []float64 {
	if c.CalculatorTimeout <= minLatencyBucket {
		return nil
	}
	return prometheus.ExponentialBucketsRange(minLatencyBucket.Seconds(), c.CalculatorTimeout.Seconds(), latencyBucketCount)
}
