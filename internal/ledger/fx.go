package ledger

import (
	"github.com/innovatex/planpay/internal/ledger/repository"
	"github.com/innovatex/planpay/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
