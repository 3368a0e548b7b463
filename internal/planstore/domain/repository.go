package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, record *UserPlanRecord) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*UserPlanRecord, error)
}
