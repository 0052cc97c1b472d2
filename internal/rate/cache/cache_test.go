package cache

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pcsengine/internal/clock"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func sampleRecord() ratedomain.RateRecord {
	return ratedomain.RateRecord{
		ID:        42,
		RateType:  ratedomain.RateTypeMileage,
		LookupKey: "POV",
		Value:     decimal.RequireFromString("0.21"),
		Unit:      ratedomain.UnitUSDPerMile,
	}
}

func TestMemoryCacheKeysIncludeAsOfDate(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	c := NewMemory(fake, time.Minute)
	ctx := context.Background()

	jan := Key{RateType: ratedomain.RateTypeMileage, LookupKey: "POV", AsOf: civil.Date{Year: 2025, Month: 1, Day: 1}}
	feb := jan
	feb.AsOf = civil.Date{Year: 2025, Month: 2, Day: 1}

	c.Set(ctx, jan, sampleRecord())

	got, ok := c.Get(ctx, jan)
	assert.True(t, ok)
	assert.True(t, got.Value.Equal(decimal.RequireFromString("0.21")))

	_, ok = c.Get(ctx, feb)
	assert.False(t, ok)

	fake.Advance(2 * time.Minute)
	_, ok = c.Get(ctx, jan)
	assert.False(t, ok)
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NewNoop()
	key := Key{RateType: ratedomain.RateTypeMileage, LookupKey: "POV"}
	c.Set(context.Background(), key, sampleRecord())
	_, ok := c.Get(context.Background(), key)
	assert.False(t, ok)
}

func TestRedisCacheMissesWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedis(client, time.Minute, zap.NewNop())
	key := Key{RateType: ratedomain.RateTypeMileage, LookupKey: "POV", AsOf: civil.Date{Year: 2025, Month: 1, Day: 1}}

	c.Set(context.Background(), key, sampleRecord())
	_, ok := c.Get(context.Background(), key)
	assert.False(t, ok)
}

func TestKeyString(t *testing.T) {
	key := Key{RateType: ratedomain.RateTypePerDiem, LookupKey: "CA:SAN DIEGO", AsOf: civil.Date{Year: 2025, Month: 1, Day: 2}}
	assert.Equal(t, "per_diem|CA:SAN DIEGO|2025-01-02", key.String())
}
