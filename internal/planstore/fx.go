package planstore

import (
	"github.com/innovatex/planpay/internal/planstore/repository"
	"github.com/innovatex/planpay/internal/planstore/service"
	"go.uber.org/fx"
)

var Module = fx.Module("planstore.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
