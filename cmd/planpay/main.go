package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/innovatex/planpay/internal/checkout"
	"github.com/innovatex/planpay/internal/config"
	"github.com/innovatex/planpay/internal/ledger"
	"github.com/innovatex/planpay/internal/mercadopago"
	"github.com/innovatex/planpay/internal/migration"
	"github.com/innovatex/planpay/internal/notifier"
	"github.com/innovatex/planpay/internal/observability/logger"
	"github.com/innovatex/planpay/internal/planstore"
	"github.com/innovatex/planpay/internal/providers/email"
	"github.com/innovatex/planpay/internal/reconcile"
	"github.com/innovatex/planpay/internal/server"
	"github.com/innovatex/planpay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,

		// Domain modules
		mercadopago.Module,
		email.Module,
		checkout.Module,
		planstore.Module,
		ledger.Module,
		notifier.Module,
		reconcile.Module,

		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
