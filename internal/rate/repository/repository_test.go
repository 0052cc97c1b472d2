package repository

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&ratedomain.RateRecord{}))
	return db
}

func insertRate(t *testing.T, db *gorm.DB, node *snowflake.Node, key string, effective civil.Date, value string) {
	t.Helper()
	err := Provide().Insert(context.Background(), db, &ratedomain.RateRecord{
		ID:                 node.Generate(),
		RateType:           ratedomain.RateTypeRelocationAllowance,
		LookupKey:          key,
		EffectiveDate:      ratedomain.DateTime(effective),
		Value:              decimal.RequireFromString(value),
		Unit:               ratedomain.UnitUSD,
		Citation:           "JTR 050501",
		SourceLabel:        "dtmo",
		VerificationStatus: ratedomain.VerificationVerified,
		CreatedAt:          time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestFindEffectiveAtIsStrictlyOnOrBefore(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	insertRate(t, db, node, "E-5:with", civil.Date{Year: 2024, Month: 1, Day: 1}, "2955")
	insertRate(t, db, node, "E-5:with", civil.Date{Year: 2025, Month: 1, Day: 1}, "3062")
	insertRate(t, db, node, "E-6:with", civil.Date{Year: 2025, Month: 1, Day: 1}, "3342")

	store := NewStore(db, Provide())
	ctx := context.Background()

	rec, err := store.Query(ctx, ratedomain.RateTypeRelocationAllowance, "E-5:with", civil.Date{Year: 2024, Month: 12, Day: 31})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(2955)))

	rec, err = store.Query(ctx, ratedomain.RateTypeRelocationAllowance, "E-5:with", civil.Date{Year: 2025, Month: 1, Day: 1})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Value.Equal(decimal.NewFromInt(3062)))
	assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 1}, rec.Effective())

	rec, err = store.Query(ctx, ratedomain.RateTypeRelocationAllowance, "E-5:with", civil.Date{Year: 2023, Month: 6, Day: 1})
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = store.Query(ctx, ratedomain.RateTypePerDiem, "E-5:with", civil.Date{Year: 2025, Month: 6, Day: 1})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListByKeyAndCount(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	insertRate(t, db, node, "E-5:with", civil.Date{Year: 2025, Month: 1, Day: 1}, "3062")
	insertRate(t, db, node, "E-5:with", civil.Date{Year: 2024, Month: 1, Day: 1}, "2955")

	items, err := Provide().ListByKey(context.Background(), db, ratedomain.RateTypeRelocationAllowance, "E-5:with")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].EffectiveDate.Before(items[1].EffectiveDate))

	count, err := Provide().Count(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInsertRejectsDuplicateEffectiveDate(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	insertRate(t, db, node, "E-5:with", civil.Date{Year: 2025, Month: 1, Day: 1}, "3062")
	err = Provide().Insert(context.Background(), db, &ratedomain.RateRecord{
		ID:            node.Generate(),
		RateType:      ratedomain.RateTypeRelocationAllowance,
		LookupKey:     "E-5:with",
		EffectiveDate: ratedomain.DateTime(civil.Date{Year: 2025, Month: 1, Day: 1}),
		Value:         decimal.NewFromInt(1),
		Unit:          ratedomain.UnitUSD,
		CreatedAt:     time.Now().UTC(),
	})
	assert.Error(t, err)
}
