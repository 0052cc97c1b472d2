package entitlement

import (
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	"github.com/smallbiznis/pcsengine/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(service.New),
	fx.Provide(func(s *service.Service) entdomain.Service { return s }),
)
