package domain

import (
	"context"
	"errors"
	"time"
)

type AppendSaleRequest struct {
	PaymentID   string
	Identity    string
	PlanID      string
	Amount      float64
	Method      string
	PaymentType string
	Status      string
	Reference   string
	OccurredAt  time.Time
}

type ListSalesRequest struct {
	Status       string
	ReferenceTag string
	PaymentTypes []string
	Limit        int
}

type Service interface {
	// AppendIfAbsent records the sale once per payment id and reports
	// whether this call created the row.
	AppendIfAbsent(context.Context, AppendSaleRequest) (bool, error)
	List(context.Context, ListSalesRequest) ([]SaleRecord, error)
}

var ErrInvalidSale = errors.New("invalid_sale")
