package seed

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pcsengine/internal/clock"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	"github.com/smallbiznis/pcsengine/internal/rate/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupParams(t *testing.T) Params {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&ratedomain.RateRecord{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return Params{
		DB:       db,
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		Fallback: fallback.Default(),
	}
}

func TestRates_SeedsEmptyStoreOnce(t *testing.T) {
	p := setupParams(t)
	ctx := context.Background()

	seeded, err := Rates(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, len(p.Fallback.Entries()), seeded)

	again, err := Rates(ctx, p)
	require.NoError(t, err)
	assert.Zero(t, again)

	count, err := p.Repo.Count(ctx, p.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(seeded), count)
}

func TestRates_SeededRowsAreUnverified(t *testing.T) {
	p := setupParams(t)
	ctx := context.Background()
	_, err := Rates(ctx, p)
	require.NoError(t, err)

	record, err := p.Repo.FindEffectiveAt(ctx, p.DB, ratedomain.RateTypeRelocationAllowance, "E-5:with",
		ratedomain.DateTime(civil.Date{Year: 2025, Month: 6, Day: 1}))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, ratedomain.VerificationUnverified, record.VerificationStatus)
	assert.Equal(t, SourceLabelSeed, record.SourceLabel)
	assert.Equal(t, "3062", record.Value.String())
}

func TestRates_RequiresDB(t *testing.T) {
	_, err := Rates(context.Background(), Params{})
	assert.Error(t, err)
}
