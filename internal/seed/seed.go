// Package seed copies the built-in fallback table into an empty rate store
// for development environments.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pcsengine/internal/clock"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	"gorm.io/gorm"
)

const SourceLabelSeed = "fallback-seed"

type Params struct {
	DB       *gorm.DB
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     ratedomain.Repository
	Fallback *fallback.Table
}

// Rates inserts every fallback entry as an unverified record when the store
// holds no rates yet, and returns the number of rows written. A store that
// already has rates is left untouched.
func Rates(ctx context.Context, p Params) (int, error) {
	if p.DB == nil {
		return 0, errors.New("seed database handle is required")
	}
	if p.Repo == nil || p.Fallback == nil || p.GenID == nil {
		return 0, errors.New("seed dependencies are required")
	}

	count, err := p.Repo.Count(ctx, p.DB)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := clock.New()
	if p.Clock != nil {
		now = p.Clock
	}
	entries := p.Fallback.Entries()
	err = p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			record := ratedomain.RateRecord{
				ID:                 p.GenID.Generate(),
				RateType:           entry.RateType,
				LookupKey:          entry.LookupKey,
				EffectiveDate:      ratedomain.DateTime(entry.EffectiveDate),
				Value:              entry.Value,
				Unit:               ratedomain.UnitFor(entry.RateType),
				Citation:           entry.Citation,
				SourceLabel:        SourceLabelSeed,
				VerificationStatus: ratedomain.VerificationUnverified,
				CreatedAt:          now.Now().UTC(),
			}
			if err := p.Repo.Insert(ctx, tx, &record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
