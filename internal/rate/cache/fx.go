package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Clock     clock.Clock
	Log       *zap.Logger
}

// Provide selects the cache driver from RATE_CACHE_DRIVER. A redis driver
// without an address degrades to the in-memory cache.
func Provide(p Params) Cache {
	cfg := p.Config.RateCache
	switch cfg.Driver {
	case config.CacheDriverNone:
		return NewNoop()
	case config.CacheDriverRedis:
		if p.Config.Redis.Addr == "" {
			p.Log.Warn("redis rate cache requested without REDIS_ADDR, using memory cache")
			break
		}
		client := redis.NewClient(&redis.Options{
			Addr:     p.Config.Redis.Addr,
			Password: p.Config.Redis.Password,
			DB:       p.Config.Redis.DB,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					p.Log.Warn("redis rate cache unreachable, lookups will miss", zap.Error(err))
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return NewRedis(client, cfg.TTL, p.Log)
	}
	return NewMemory(p.Clock, cfg.TTL)
}

var Module = fx.Module("rate.cache",
	fx.Provide(Provide),
)
