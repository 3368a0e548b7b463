package migration

import (
	ledgerdomain "github.com/innovatex/planpay/internal/ledger/domain"
	planstoredomain "github.com/innovatex/planpay/internal/planstore/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return conn.AutoMigrate(
			&planstoredomain.UserPlanRecord{},
			&ledgerdomain.SaleRecord{},
		)
	}),
)
