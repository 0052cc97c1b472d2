package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// EngineCollectors are the Prometheus series scraped from /metrics.
type EngineCollectors struct {
	resolutions        *prometheus.CounterVec
	calculatorFailures *prometheus.CounterVec
	snapshotFailures   *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec
}

var defaultCalculationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "pcsengine"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{"service": serviceName, "env": environment}
}

func NewEngineCollectors(registerer prometheus.Registerer, cfg Config) (*EngineCollectors, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)
	buckets := cfg.CalculationBuckets
	if len(buckets) == 0 {
		buckets = defaultCalculationBuckets
	}

	c := &EngineCollectors{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pcsengine_rate_resolutions_total",
			Help:        "Rate resolutions by rate type and outcome (live, fallback, default, unresolved).",
			ConstLabels: labels,
		}, []string{"rate_type", "outcome"}),
		calculatorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pcsengine_calculator_failures_total",
			Help:        "Calculators that produced a degraded line.",
			ConstLabels: labels,
		}, []string{"entitlement_type"}),
		snapshotFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pcsengine_snapshot_failures_total",
			Help:        "Calculation snapshots dropped or not persisted.",
			ConstLabels: labels,
		}, []string{"reason"}),
		calculationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "pcsengine_calculation_duration_seconds",
			Help:        "End-to-end claim calculation latency by confidence level.",
			Buckets:     buckets,
			ConstLabels: labels,
		}, []string{"confidence_level"}),
	}

	for _, collector := range []prometheus.Collector{
		c.resolutions, c.calculatorFailures, c.snapshotFailures, c.calculationLatency,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *EngineCollectors) incResolution(rateType, outcome string) {
	if c == nil {
		return
	}
	c.resolutions.WithLabelValues(sanitizeLabel(rateType), sanitizeLabel(outcome)).Inc()
}

func (c *EngineCollectors) incCalculatorFailure(entitlementType string) {
	if c == nil {
		return
	}
	c.calculatorFailures.WithLabelValues(sanitizeLabel(entitlementType)).Inc()
}

func (c *EngineCollectors) incSnapshotFailure(reason string) {
	if c == nil {
		return
	}
	c.snapshotFailures.WithLabelValues(sanitizeLabel(reason)).Inc()
}

func (c *EngineCollectors) observeCalculation(level string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.calculationLatency.WithLabelValues(sanitizeLabel(level)).Observe(elapsed.Seconds())
}

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(registerer prometheus.Registerer, cfg Config) (*HTTPMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pcsengine_http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "pcsengine_http_request_duration_seconds",
			Help:        "HTTP request latency by method and route.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "route"}),
	}
	if err := registerer.Register(m.requests); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func sanitizeLabel(val string) string {
	val = strings.TrimSpace(val)
	if val == "" {
		return "unknown"
	}
	return val
}
