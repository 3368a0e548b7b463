package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/innovatex/planpay/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) AppendIfAbsent(ctx context.Context, req domain.AppendSaleRequest) (bool, error) {
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" || req.Identity == "" || req.PlanID == "" {
		return false, domain.ErrInvalidSale
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	record := domain.SaleRecord{
		ID:          s.genID.Generate(),
		PaymentID:   paymentID,
		Identity:    req.Identity,
		PlanID:      req.PlanID,
		Amount:      req.Amount,
		Method:      req.Method,
		PaymentType: req.PaymentType,
		Status:      req.Status,
		Reference:   req.Reference,
		RecordedAt:  occurredAt,
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, s.db, &record)
	if err != nil {
		return false, err
	}
	if !inserted {
		s.log.Debug("sale already recorded", zap.String("payment_id", paymentID))
	}
	return inserted, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSalesRequest) ([]domain.SaleRecord, error) {
	return s.repo.List(ctx, s.db, domain.ListFilter{
		Status:       req.Status,
		ReferenceTag: req.ReferenceTag,
		PaymentTypes: req.PaymentTypes,
		Limit:        req.Limit,
	})
}
