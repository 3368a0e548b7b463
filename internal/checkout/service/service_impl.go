package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/innovatex/planpay/internal/catalog"
	"github.com/innovatex/planpay/internal/checkout/domain"
	"github.com/innovatex/planpay/internal/config"
	"github.com/innovatex/planpay/internal/mercadopago"
	"github.com/innovatex/planpay/internal/reference"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Gateway mercadopago.Client
}

type Service struct {
	cfg     config.Config
	log     *zap.Logger
	gateway mercadopago.Client
}

func New(p Params) domain.Service {
	return &Service{
		cfg:     p.Cfg,
		log:     p.Log.Named("checkout.service"),
		gateway: p.Gateway,
	}
}

// CreatePreference prices the plan and registers a checkout preference with
// the gateway. The purchase reference is attached twice, as the opaque
// external_reference token and as structured metadata, so the webhook path
// can still recover identity and plan if one of the two is dropped.
func (s *Service) CreatePreference(ctx context.Context, req domain.CreatePreferenceRequest) (*domain.CreatePreferenceResponse, error) {
	identity := strings.TrimSpace(req.Identity)
	if identity == "" || !strings.Contains(identity, "@") {
		return nil, domain.ErrInvalidIdentity
	}

	plan, err := catalog.Lookup(req.PlanID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownPlan) {
			return nil, domain.ErrInvalidPlan
		}
		return nil, err
	}

	token := reference.Encode(identity, plan.ID)
	pref, err := s.gateway.CreatePreference(ctx, mercadopago.PreferenceRequest{
		Items: []mercadopago.Item{
			{
				ID:        "plan-" + plan.ID,
				Title:     plan.Title,
				Quantity:  1,
				UnitPrice: plan.UnitPrice,
				Currency:  "ARS",
			},
		},
		BackURLs: &mercadopago.BackURLs{
			Success: fmt.Sprintf("%s/plan-%s", s.cfg.FrontendURL, plan.ID),
			Failure: s.cfg.FrontendURL,
		},
		AutoReturn:        "approved",
		ExternalReference: token,
		Metadata: map[string]any{
			"user_email": identity,
			"plan":       plan.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	s.log.Info("preference created",
		zap.String("preference_id", pref.ID.String()),
		zap.String("plan", plan.ID),
	)

	return &domain.CreatePreferenceResponse{
		PreferenceID: pref.ID.String(),
		RedirectURL:  pref.InitPoint,
		Reference:    token,
	}, nil
}
