// Package notifier sends best-effort purchase confirmations. Dispatch is
// fire-and-forget: the webhook response never waits on, or fails because of,
// the mail transport.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/innovatex/planpay/internal/catalog"
	"github.com/innovatex/planpay/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dispatchTimeout = 15 * time.Second

type Confirmation struct {
	Identity  string
	PlanID    string
	PaymentID string
	Amount    float64
}

type Service interface {
	// Dispatch schedules the confirmation and returns immediately.
	Dispatch(ctx context.Context, c Confirmation)
}

var Module = fx.Module("notifier.service",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Email email.Provider
}

type service struct {
	log   *zap.Logger
	email email.Provider
}

func New(p Params) Service {
	return &service{
		log:   p.Log.Named("notifier.service"),
		email: p.Email,
	}
}

func (s *service) Dispatch(ctx context.Context, c Confirmation) {
	// Detached from the request context: the webhook has already been
	// acknowledged by the time this runs.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := s.Send(sendCtx, c); err != nil {
			s.log.Warn("confirmation dispatch failed",
				zap.String("identity", c.Identity),
				zap.String("payment_id", c.PaymentID),
				zap.Error(err),
			)
		}
	}()
}

// Send builds and sends the confirmation synchronously.
func (s *service) Send(ctx context.Context, c Confirmation) error {
	subject := "Confirmación de compra"
	body := fmt.Sprintf(
		"<p>¡Gracias por tu compra!</p><p>%s</p><p>Monto: $%.2f<br>Pago: %s</p>",
		catalog.Describe(c.PlanID),
		c.Amount,
		c.PaymentID,
	)
	return s.email.Send(ctx, []string{c.Identity}, subject, body)
}
