package service

import (
	"context"
	"strings"
	"time"

	"github.com/innovatex/planpay/internal/planstore/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("planstore.service"),
		repo: p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertPlanRequest) error {
	identity := normalizeIdentity(req.Identity)
	if identity == "" {
		return domain.ErrInvalidIdentity
	}
	planID := strings.ToLower(strings.TrimSpace(req.PlanID))
	if planID == "" {
		return domain.ErrInvalidPlan
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	record := domain.UserPlanRecord{
		Email:             identity,
		CurrentPlan:       planID,
		Paid:              true,
		LastPaymentID:     req.Audit.ID,
		LastPaymentAmount: req.Audit.Amount,
		LastPaymentMethod: req.Audit.Method,
		LastPaymentAt:     req.Audit.Timestamp,
		Metadata:          datatypes.JSONMap(metadata),
		UpdatedAt:         time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, s.db, &record); err != nil {
		return err
	}

	s.log.Info("plan upserted",
		zap.String("identity", identity),
		zap.String("plan", planID),
		zap.String("payment_id", req.Audit.ID),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, identity string) (*domain.UserPlanRecord, error) {
	identity = normalizeIdentity(identity)
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}
	return s.repo.FindByEmail(ctx, s.db, identity)
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
