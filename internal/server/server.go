package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	"github.com/smallbiznis/pcsengine/internal/observability"
	obslogger "github.com/smallbiznis/pcsengine/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pcsengine/internal/observability/metrics"
	obstracing "github.com/smallbiznis/pcsengine/internal/observability/tracing"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/ratelimit"
	snapshotdomain "github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	clock          clock.Clock
	entitlementSvc entdomain.Service
	rateSvc        ratedomain.Service
	snapshotSvc    snapshotdomain.Service
	limiter        ratelimit.Allower
	log            *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Clock          clock.Clock
	EntitlementSvc entdomain.Service
	RateSvc        ratedomain.Service
	SnapshotSvc    snapshotdomain.Service
	Limiter        ratelimit.Allower `optional:"true"`
	Log            *zap.Logger       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		clock:          p.Clock,
		entitlementSvc: p.EntitlementSvc,
		rateSvc:        p.RateSvc,
		snapshotSvc:    p.SnapshotSvc,
		limiter:        p.Limiter,
		log:            p.Log,
	}
	if svc.limiter == nil {
		svc.limiter = ratelimit.Noop{}
	}
	if svc.log == nil {
		svc.log = zap.NewNop()
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Entitlements --------
	api.POST("/entitlements/calculate", s.rateLimit(), s.CalculateEntitlements)

	// -------- Rates --------
	api.GET("/rates/:rate_type/resolve", s.ResolveRate)
	api.GET("/rates/:rate_type/history", s.ListRateHistory)
	api.POST("/rates", s.PublishRate)

	// -------- Grades --------
	api.GET("/grades/normalize", s.NormalizeGrade)

	// -------- Snapshots --------
	api.GET("/claims/:claim_id/snapshots", s.ListClaimSnapshots)
}
