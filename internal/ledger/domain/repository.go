package domain

import (
	"context"

	"gorm.io/gorm"
)

// ListFilter narrows a ledger listing. Zero values mean "no constraint".
type ListFilter struct {
	Status       string
	ReferenceTag string
	PaymentTypes []string
	Limit        int
}

type Repository interface {
	// InsertIfAbsent appends the record unless a row for its payment id
	// already exists, and reports whether it inserted.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, record *SaleRecord) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]SaleRecord, error)
}
