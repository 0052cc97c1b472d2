package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"go.uber.org/zap"
)

const redisKeyPrefix = "pcsengine:rate:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedis shares cached records across engine replicas.
func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) Cache {
	return &redisCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("rate.cache.redis"),
	}
}

func (r *redisCache) Get(ctx context.Context, key Key) (ratedomain.RateRecord, bool) {
	var record ratedomain.RateRecord
	payload, err := r.client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Debug("rate cache get failed", zap.String("key", key.String()), zap.Error(err))
		}
		return record, false
	}
	if err := json.Unmarshal(payload, &record); err != nil {
		r.log.Warn("rate cache entry undecodable", zap.String("key", key.String()), zap.Error(err))
		return ratedomain.RateRecord{}, false
	}
	return record, true
}

func (r *redisCache) Set(ctx context.Context, key Key, record ratedomain.RateRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		r.log.Warn("rate cache encode failed", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key.String(), payload, r.ttl).Err(); err != nil {
		r.log.Debug("rate cache set failed", zap.String("key", key.String()), zap.Error(err))
	}
}
