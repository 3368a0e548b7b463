package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/innovatex/planpay/internal/checkout/domain"
	"github.com/innovatex/planpay/internal/config"
	ledgerdomain "github.com/innovatex/planpay/internal/ledger/domain"
	"github.com/innovatex/planpay/internal/mercadopago"
	obslogger "github.com/innovatex/planpay/internal/observability/logger"
	planstoredomain "github.com/innovatex/planpay/internal/planstore/domain"
	reconcileservice "github.com/innovatex/planpay/internal/reconcile/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

type Params struct {
	fx.In

	Engine       *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	CheckoutSvc  checkoutdomain.Service
	ReconcileSvc *reconcileservice.Service
	PlanSvc      planstoredomain.Service
	LedgerSvc    ledgerdomain.Service
	Gateway      mercadopago.Client
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	checkoutSvc  checkoutdomain.Service
	reconcileSvc *reconcileservice.Service
	planSvc      planstoredomain.Service
	ledgerSvc    ledgerdomain.Service
	gateway      mercadopago.Client
}

func NewServer(p Params) *Server {
	return &Server{
		engine:       p.Engine,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		checkoutSvc:  p.CheckoutSvc,
		reconcileSvc: p.ReconcileSvc,
		planSvc:      p.PlanSvc,
		ledgerSvc:    p.LedgerSvc,
		gateway:      p.Gateway,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api")
	api.POST("/create-preference", s.CreatePreference)
	api.POST("/webhook", s.HandleWebhook)
	api.GET("/plan-status", s.GetPlanStatus)
	api.GET("/sales", s.ListSales)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
