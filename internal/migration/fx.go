package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	"github.com/smallbiznis/pcsengine/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Config   config.Config
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     ratedomain.Repository
	Fallback *fallback.Table
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p Params) error {
		if err := Run(p.DB, p.Config.DBType); err != nil {
			return err
		}
		if !p.Config.SeedRates {
			return nil
		}
		seeded, err := seed.Rates(context.Background(), seed.Params{
			DB:       p.DB,
			GenID:    p.GenID,
			Clock:    p.Clock,
			Repo:     p.Repo,
			Fallback: p.Fallback,
		})
		if err != nil {
			return err
		}
		p.Log.Info("rate store seeded from fallback table", zap.Int("rows", seeded))
		return nil
	}),
)
