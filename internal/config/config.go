package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds process configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint  string
	Observability ObservabilityConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis     RedisConfig
	RateCache RateCacheConfig
	Snapshot  SnapshotConfig
	RateLimit RateLimitConfig

	SeedRates        bool
	EngineConfigPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateCacheConfig selects the read-through cache in front of the rate store.
type RateCacheConfig struct {
	Driver string
	TTL    time.Duration
}

// RateLimitConfig throttles calculation requests per client with a redis
// token bucket. Rate is tokens per second.
type RateLimitConfig struct {
	Enabled bool
	Rate    float64
	Burst   int
}

// ObservabilityConfig tunes logging, tracing and metrics. A zero
// SlowQueryThreshold is derived from the engine store timeout.
type ObservabilityConfig struct {
	LogLevel           string
	LogFormat          string
	TracingEnabled     bool
	OTLPProtocol       string
	SamplingRatio      float64
	SlowQueryThreshold time.Duration
}

type SnapshotConfig struct {
	QueueSize    int
	WriteTimeout time.Duration
}

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewEngineConfigHolder),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:           getenv("APP_SERVICE", "pcsengine"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
		Observability:     loadObservability(),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "pcsengine"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateCache: RateCacheConfig{
			Driver: normalizeCacheDriver(getenv("RATE_CACHE_DRIVER", CacheDriverMemory)),
			TTL:    getenvDuration("RATE_CACHE_TTL", 15*time.Minute),
		},
		Snapshot: SnapshotConfig{
			QueueSize:    getenvInt("SNAPSHOT_QUEUE_SIZE", 256),
			WriteTimeout: getenvDuration("SNAPSHOT_WRITE_TIMEOUT", 2*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled: getenvBool("RATE_LIMIT_ENABLED", false),
			Rate:    getenvFloat("RATE_LIMIT_CALCULATE_RATE", 20),
			Burst:   getenvInt("RATE_LIMIT_CALCULATE_BURST", 40),
		},
		SeedRates:        getenvBool("SEED_RATES", false),
		EngineConfigPath: strings.TrimSpace(getenv("ENGINE_CONFIG_PATH", "")),
	}
}

func loadObservability() ObservabilityConfig {
	protocol := getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))
	ratio := getenvFloat("OTEL_SAMPLING_RATIO", 0.1)
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}
	return ObservabilityConfig{
		LogLevel:           strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:          strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		TracingEnabled:     getenvBool("OTEL_ENABLED", false),
		OTLPProtocol:       strings.ToLower(strings.TrimSpace(protocol)),
		SamplingRatio:      ratio,
		SlowQueryThreshold: getenvDuration("GORM_SLOW_THRESHOLD", 0),
	}
}

// IsDevelopment reports environments where debug output is on by default.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizeCacheDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CacheDriverRedis:
		return CacheDriverRedis
	case CacheDriverNone, "off", "disabled":
		return CacheDriverNone
	default:
		return CacheDriverMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
