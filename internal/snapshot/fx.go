package snapshot

import (
	"context"

	snapshotdomain "github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"github.com/smallbiznis/pcsengine/internal/snapshot/repository"
	"github.com/smallbiznis/pcsengine/internal/snapshot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("snapshot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(
		func(s *service.Service) snapshotdomain.Service { return s },
		func(s *service.Service) snapshotdomain.Recorder { return s },
	),
	fx.Invoke(registerWorker),
)

func registerWorker(lc fx.Lifecycle, s *service.Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}
