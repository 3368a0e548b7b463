package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/innovatex/planpay/internal/ledger/domain"
	"github.com/innovatex/planpay/internal/mercadopago"
	"github.com/innovatex/planpay/internal/reference"
	"go.uber.org/zap"
)

// webPaymentTypes is the allow-list of gateway payment types shown in the
// sales report. Anything else is unrelated gateway traffic.
var webPaymentTypes = []string{"credit_card", "debit_card", "account_money"}

const salesLimit = 50

// saleItem uses the field names the reporting frontend consumes.
type saleItem struct {
	ID         string    `json:"id"`
	Fecha      time.Time `json:"fecha"`
	Monto      float64   `json:"monto"`
	Metodo     string    `json:"metodo"`
	Plan       string    `json:"plan"`
	Referencia string    `json:"referencia"`
	Estado     string    `json:"estado"`
	Cliente    string    `json:"cliente"`
}

// ListSales returns the most recent approved sales from the web funnel,
// newest first. An empty ledger falls back to the gateway's payment search,
// so the report survives a fresh database.
func (s *Server) ListSales(c *gin.Context) {
	records, err := s.ledgerSvc.List(c.Request.Context(), ledgerdomain.ListSalesRequest{
		Status:       mercadopago.StatusApproved,
		ReferenceTag: reference.Tag,
		PaymentTypes: webPaymentTypes,
		Limit:        salesLimit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if len(records) == 0 {
		items, err := s.gatewaySales(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, items)
			return
		}
		s.log.Warn("gateway sales fallback failed", zap.Error(err))
	}

	items := make([]saleItem, 0, len(records))
	for _, record := range records {
		items = append(items, saleItem{
			ID:         record.PaymentID,
			Fecha:      record.RecordedAt,
			Monto:      record.Amount,
			Metodo:     record.Method,
			Plan:       record.PlanID,
			Referencia: record.Reference,
			Estado:     record.Status,
			Cliente:    record.Identity,
		})
	}

	c.JSON(http.StatusOK, items)
}

// gatewaySales queries the gateway directly and applies the same web-funnel
// filters the ledger listing uses.
func (s *Server) gatewaySales(ctx context.Context) ([]saleItem, error) {
	payments, err := s.gateway.SearchPayments(ctx, mercadopago.SearchOptions{
		Status: mercadopago.StatusApproved,
		Limit:  salesLimit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]saleItem, 0, len(payments))
	for _, p := range payments {
		if !strings.Contains(p.ExternalReference, reference.Tag) || !isWebPaymentType(p.PaymentTypeID) {
			continue
		}
		item := saleItem{
			ID:         p.ID.String(),
			Fecha:      p.DateCreated,
			Monto:      p.TransactionAmount,
			Metodo:     p.PaymentMethodID,
			Referencia: p.ExternalReference,
			Estado:     p.Status,
		}
		if ref, err := reference.Decode(p.ExternalReference); err == nil {
			item.Plan = strings.ToLower(ref.PlanID)
			item.Cliente = strings.ToLower(ref.Identity)
		}
		items = append(items, item)
	}
	return items, nil
}

func isWebPaymentType(paymentType string) bool {
	for _, t := range webPaymentTypes {
		if t == paymentType {
			return true
		}
	}
	return false
}
