package cache

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	ttlcache "github.com/smallbiznis/pcsengine/internal/cache"
	"github.com/smallbiznis/pcsengine/internal/clock"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

// Key identifies one resolver lookup. Entries are per as-of date so a cached
// record can never be served for a date it does not apply to.
type Key struct {
	RateType  ratedomain.RateType
	LookupKey string
	AsOf      civil.Date
}

func (k Key) String() string {
	return strings.Join([]string{string(k.RateType), k.LookupKey, k.AsOf.String()}, "|")
}

// Cache is the read-through cache in front of the rate store. Misses and
// backend failures look the same to callers.
type Cache interface {
	Get(ctx context.Context, key Key) (ratedomain.RateRecord, bool)
	Set(ctx context.Context, key Key, record ratedomain.RateRecord)
}

type memoryCache struct {
	entries ttlcache.Cache[Key, ratedomain.RateRecord]
	ttl     time.Duration
}

func NewMemory(c clock.Clock, ttl time.Duration) Cache {
	return &memoryCache{
		entries: ttlcache.NewTTLCache[Key, ratedomain.RateRecord](c),
		ttl:     ttl,
	}
}

func (m *memoryCache) Get(_ context.Context, key Key) (ratedomain.RateRecord, bool) {
	return m.entries.Get(key)
}

func (m *memoryCache) Set(_ context.Context, key Key, record ratedomain.RateRecord) {
	m.entries.Set(key, record, m.ttl)
}

type noopCache struct{}

// NewNoop returns a cache that never hits.
func NewNoop() Cache { return noopCache{} }

func (noopCache) Get(context.Context, Key) (ratedomain.RateRecord, bool) {
	return ratedomain.RateRecord{}, false
}

func (noopCache) Set(context.Context, Key, ratedomain.RateRecord) {}
