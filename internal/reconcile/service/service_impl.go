package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/innovatex/planpay/internal/config"
	ledgerdomain "github.com/innovatex/planpay/internal/ledger/domain"
	"github.com/innovatex/planpay/internal/mercadopago"
	"github.com/innovatex/planpay/internal/notifier"
	planstoredomain "github.com/innovatex/planpay/internal/planstore/domain"
	"github.com/innovatex/planpay/internal/reconcile/domain"
	"github.com/innovatex/planpay/internal/reference"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// identityMetadataKeys are tried in order; the gateway has renamed the
// metadata field across API revisions.
var identityMetadataKeys = []string{"userEmail", "user_email", "email"}

const defaultRetryWait = 2 * time.Second

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Gateway  mercadopago.Client
	Plans    planstoredomain.Service
	Ledger   ledgerdomain.Service
	Notifier notifier.Service
}

type Service struct {
	cfg       config.Config
	log       *zap.Logger
	gateway   mercadopago.Client
	plans     planstoredomain.Service
	ledger    ledgerdomain.Service
	notifier  notifier.Service
	retryWait time.Duration
}

func New(p Params) *Service {
	return &Service{
		cfg:       p.Cfg,
		log:       p.Log.Named("reconcile.service"),
		gateway:   p.Gateway,
		plans:     p.Plans,
		ledger:    p.Ledger,
		notifier:  p.Notifier,
		retryWait: defaultRetryWait,
	}
}

// Process reconciles one gateway notification. Processing the same payment id
// any number of times, sequentially or concurrently, leaves the plan record
// and the ledger in the state of a single delivery: the ledger append is
// conditional on absence and the plan upsert is a merge of identical values.
func (s *Service) Process(ctx context.Context, n domain.Notification) (domain.Outcome, error) {
	if n.Type != "payment" {
		s.log.Info("notification ignored", zap.String("type", n.Type))
		return domain.Outcome{Status: domain.OutcomeIgnored, Reason: "event_type"}, nil
	}

	paymentID := strings.TrimSpace(n.Data.ID)
	if paymentID == "" {
		return domain.Outcome{}, domain.ErrMalformedNotification
	}

	payment, err := s.fetchRecord(ctx, paymentID)
	if err != nil {
		return domain.Outcome{}, err
	}

	if payment.Status != mercadopago.StatusApproved {
		s.log.Info("payment not approved",
			zap.String("payment_id", paymentID),
			zap.String("status", payment.Status),
		)
		return domain.Outcome{
			Status:    domain.OutcomeIgnored,
			Reason:    "status_" + payment.Status,
			PaymentID: paymentID,
		}, nil
	}

	identity, planID, err := s.extract(payment)
	if err != nil {
		return domain.Outcome{}, err
	}

	if err := s.commit(ctx, paymentID, identity, planID, payment); err != nil {
		return domain.Outcome{}, err
	}

	return domain.Outcome{
		Status:    domain.OutcomeCommitted,
		PaymentID: paymentID,
		Identity:  identity,
		PlanID:    planID,
	}, nil
}

// fetchRecord retrieves the authoritative payment record. The reserved test
// id resolves to a fixed synthetic record outside production. An empty
// gateway response is retried exactly once after a short wait.
func (s *Service) fetchRecord(ctx context.Context, paymentID string) (*mercadopago.Payment, error) {
	if paymentID == mercadopago.TestPaymentID && s.cfg.SandboxPayments() {
		s.log.Info("using sandbox payment record", zap.String("payment_id", paymentID))
		return mercadopago.SandboxPayment(), nil
	}

	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if !payment.Empty() {
		return payment, nil
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, ctx.Err())
	case <-time.After(s.retryWait):
	}

	payment, err = s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if payment.Empty() {
		return nil, fmt.Errorf("%w: empty record for payment %s", domain.ErrGatewayUnavailable, paymentID)
	}
	return payment, nil
}

// extract derives the canonical identity and plan from the record, trying the
// fallback sources in fixed priority order: metadata, payer email, decoded
// external reference.
func (s *Service) extract(payment *mercadopago.Payment) (string, string, error) {
	identity := metadataString(payment.Metadata, identityMetadataKeys...)
	if identity == "" && payment.Payer != nil {
		identity = payment.Payer.Email
	}

	planID := metadataString(payment.Metadata, "plan")

	if identity == "" || planID == "" {
		if ref, err := reference.Decode(payment.ExternalReference); err == nil {
			if identity == "" {
				identity = ref.Identity
			}
			if planID == "" {
				planID = ref.PlanID
			}
		}
	}

	identity = strings.ToLower(strings.TrimSpace(identity))
	planID = strings.ToLower(strings.TrimSpace(planID))
	if identity == "" || planID == "" {
		s.log.Error("identity or plan unresolvable",
			zap.String("payment_id", payment.ID.String()),
			zap.String("external_reference", payment.ExternalReference),
			zap.Any("metadata", payment.Metadata),
		)
		return "", "", domain.ErrIncompleteExtraction
	}
	return identity, planID, nil
}

// commit persists the reconciled payment: merge-upsert the plan record, then
// append the ledger entry keyed by payment id. The confirmation is scheduled
// only when this delivery actually inserted the entry, so re-deliveries do
// not re-notify.
func (s *Service) commit(ctx context.Context, paymentID, identity, planID string, payment *mercadopago.Payment) error {
	occurredAt := payment.DateCreated
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	err := s.plans.Upsert(ctx, planstoredomain.UpsertPlanRequest{
		Identity: identity,
		PlanID:   planID,
		Audit: planstoredomain.PaymentAudit{
			ID:        paymentID,
			Amount:    payment.TransactionAmount,
			Method:    payment.PaymentMethodID,
			Timestamp: occurredAt,
		},
		Metadata: payment.Metadata,
	})
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	inserted, err := s.ledger.AppendIfAbsent(ctx, ledgerdomain.AppendSaleRequest{
		PaymentID:   paymentID,
		Identity:    identity,
		PlanID:      planID,
		Amount:      payment.TransactionAmount,
		Method:      payment.PaymentMethodID,
		PaymentType: payment.PaymentTypeID,
		Status:      payment.Status,
		Reference:   payment.ExternalReference,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		return fmt.Errorf("append sale: %w", err)
	}

	if inserted {
		s.notifier.Dispatch(ctx, notifier.Confirmation{
			Identity:  identity,
			PlanID:    planID,
			PaymentID: paymentID,
			Amount:    payment.TransactionAmount,
		})
	}

	s.log.Info("payment reconciled",
		zap.String("payment_id", paymentID),
		zap.String("identity", identity),
		zap.String("plan", planID),
		zap.Bool("first_delivery", inserted),
	)
	return nil
}

func metadataString(metadata map[string]any, keys ...string) string {
	for _, key := range keys {
		if raw, ok := metadata[key]; ok {
			if value, ok := raw.(string); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}
