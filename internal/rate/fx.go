package rate

import (
	"github.com/smallbiznis/pcsengine/internal/rate/cache"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	"github.com/smallbiznis/pcsengine/internal/rate/repository"
	"github.com/smallbiznis/pcsengine/internal/rate/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.service",
	cache.Module,
	fx.Provide(repository.Provide),
	fx.Provide(repository.NewStore),
	fx.Provide(provideFallback),
	fx.Provide(service.New),
	fx.Provide(
		func(s *service.Service) ratedomain.Service { return s },
		func(s *service.Service) ratedomain.Resolver { return s },
	),
)

// provideFallback fails startup when the built-in table is incomplete.
func provideFallback(log *zap.Logger) (*fallback.Table, error) {
	table := fallback.Default()
	if err := table.Validate(); err != nil {
		return nil, err
	}
	log.Info("fallback rate table loaded", zap.Int("entries", len(table.Entries())))
	return table, nil
}
