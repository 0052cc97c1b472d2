package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineConfigHolder_DefaultsWithoutFile(t *testing.T) {
	holder, err := NewEngineConfigHolder(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig(), holder.Get())
}

func TestEngineConfigHolder_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yml")
	body := []byte("engine:\n  maxNightsPerLeg: 14\n  calculatorTimeout: 3s\n  storeTimeout: 500ms\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	holder, err := NewEngineConfigHolder(Config{EngineConfigPath: path})
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 14, cfg.MaxNightsPerLeg)
	assert.Equal(t, 3*time.Second, cfg.CalculatorTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.StoreTimeout)
}

func TestEngineConfigHolder_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  maxNightsPerLeg: 0\n"), 0o600))

	_, err := NewEngineConfigHolder(Config{EngineConfigPath: path})
	assert.Error(t, err)
}

func TestEngineConfigHolder_NilHolderFallsBackToDefaults(t *testing.T) {
	var holder *EngineConfigHolder
	assert.Equal(t, DefaultEngineConfig(), holder.Get())
}

func TestLoad_CacheDriverNormalization(t *testing.T) {
	t.Setenv("RATE_CACHE_DRIVER", "REDIS")
	t.Setenv("RATE_CACHE_TTL", "bogus")
	cfg := Load()
	assert.Equal(t, CacheDriverRedis, cfg.RateCache.Driver)
	assert.Equal(t, 15*time.Minute, cfg.RateCache.TTL)

	t.Setenv("RATE_CACHE_DRIVER", "off")
	assert.Equal(t, CacheDriverNone, Load().RateCache.Driver)
}

func TestLoad_RateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_CALCULATE_RATE", "2.5")
	t.Setenv("RATE_LIMIT_CALCULATE_BURST", "nope")
	cfg := Load().RateLimit
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2.5, cfg.Rate)
	assert.Equal(t, 40, cfg.Burst)
}

func TestLoad_Observability(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP/PROTOBUF")
	t.Setenv("OTEL_SAMPLING_RATIO", "7")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.TracingEnabled)
	assert.Equal(t, "http/protobuf", cfg.Observability.OTLPProtocol)
	assert.Equal(t, 0.1, cfg.Observability.SamplingRatio)
	assert.Zero(t, cfg.Observability.SlowQueryThreshold)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	assert.False(t, cfg.IsDevelopment())
}
