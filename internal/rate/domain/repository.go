package domain

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *RateRecord) error
	FindEffectiveAt(ctx context.Context, db *gorm.DB, rateType RateType, lookupKey string, at time.Time) (*RateRecord, error)
	ListByKey(ctx context.Context, db *gorm.DB, rateType RateType, lookupKey string) ([]RateRecord, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

// Store answers "which record applies on asOf" for a normalized key. It
// returns nil, nil when no record is effective on or before asOf.
type Store interface {
	Query(ctx context.Context, rateType RateType, lookupKey string, asOf civil.Date) (*RateRecord, error)
}
