package repository

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ratedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *ratedomain.RateRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rate_records (
			id, rate_type, lookup_key, effective_date, value, unit,
			citation, source_label, verification_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.RateType,
		record.LookupKey,
		record.EffectiveDate,
		record.Value,
		record.Unit,
		record.Citation,
		record.SourceLabel,
		record.VerificationStatus,
		record.CreatedAt,
	).Error
}

// FindEffectiveAt returns the most recent record whose effective date is on
// or before at, or nil when none applies.
func (r *repo) FindEffectiveAt(
	ctx context.Context,
	db *gorm.DB,
	rateType ratedomain.RateType,
	lookupKey string,
	at time.Time,
) (*ratedomain.RateRecord, error) {
	var record ratedomain.RateRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, rate_type, lookup_key, effective_date, value, unit,
		        citation, source_label, verification_status, created_at
		 FROM rate_records
		 WHERE rate_type = ? AND lookup_key = ?
		   AND effective_date <= ?
		 ORDER BY effective_date DESC
		 LIMIT 1`,
		rateType, lookupKey, at,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) ListByKey(ctx context.Context, db *gorm.DB, rateType ratedomain.RateType, lookupKey string) ([]ratedomain.RateRecord, error) {
	var items []ratedomain.RateRecord
	err := db.WithContext(ctx).
		Model(&ratedomain.RateRecord{}).
		Where("rate_type = ? AND lookup_key = ?", rateType, lookupKey).
		Order("effective_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&ratedomain.RateRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// store adapts the repository to the resolver's Store interface.
type store struct {
	db   *gorm.DB
	repo ratedomain.Repository
}

func NewStore(db *gorm.DB, repo ratedomain.Repository) ratedomain.Store {
	return &store{db: db, repo: repo}
}

func (s *store) Query(ctx context.Context, rateType ratedomain.RateType, lookupKey string, asOf civil.Date) (*ratedomain.RateRecord, error) {
	return s.repo.FindEffectiveAt(ctx, s.db, rateType, lookupKey, ratedomain.DateTime(asOf))
}
