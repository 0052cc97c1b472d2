package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pcsengine/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyCalculate = "ratelimit:calculate:"

// Allower decides whether a client may run another calculation.
type Allower interface {
	Allow(ctx context.Context, client string) (*Result, error)
}

// Noop admits every request.
type Noop struct{}

func (Noop) Allow(context.Context, string) (*Result, error) {
	return &Result{Allowed: true}, nil
}

// CalculateLimiter applies the configured per-client budget to entitlement
// calculations.
type CalculateLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func (l *CalculateLimiter) Allow(ctx context.Context, client string) (*Result, error) {
	client = strings.TrimSpace(client)
	if client == "" {
		return nil, ErrEmptyKey
	}
	return l.bucket.Allow(ctx, keyCalculate+client, l.rate, l.burst)
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

// Provide returns Noop unless RATE_LIMIT_ENABLED is set and redis is
// configured.
func Provide(p Params) (Allower, error) {
	cfg := p.Config.RateLimit
	if !cfg.Enabled {
		return Noop{}, nil
	}
	if cfg.Rate <= 0 || cfg.Burst <= 0 {
		return nil, ErrInvalidLimit
	}
	if p.Config.Redis.Addr == "" {
		p.Log.Warn("rate limiting requested without REDIS_ADDR, requests are not limited")
		return Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.Redis.Addr,
		Password: p.Config.Redis.Password,
		DB:       p.Config.Redis.DB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return &CalculateLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.Rate,
		burst:  cfg.Burst,
	}, nil
}
