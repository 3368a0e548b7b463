package repository

import (
	"context"

	"github.com/innovatex/planpay/internal/planstore/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Upsert merge-writes the record. Only the columns owned by reconciliation
// appear in the update list, so unrelated fields on an existing row survive.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, record *domain.UserPlanRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_plans (
			email, current_plan, paid, last_payment_id, last_payment_amount,
			last_payment_method, last_payment_at, metadata, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			current_plan = excluded.current_plan,
			paid = excluded.paid,
			last_payment_id = excluded.last_payment_id,
			last_payment_amount = excluded.last_payment_amount,
			last_payment_method = excluded.last_payment_method,
			last_payment_at = excluded.last_payment_at,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		record.Email,
		record.CurrentPlan,
		record.Paid,
		record.LastPaymentID,
		record.LastPaymentAmount,
		record.LastPaymentMethod,
		record.LastPaymentAt,
		record.Metadata,
		record.UpdatedAt,
	).Error
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.UserPlanRecord, error) {
	var record domain.UserPlanRecord
	err := db.WithContext(ctx).Raw(
		`SELECT email, current_plan, paid, last_payment_id, last_payment_amount,
			last_payment_method, last_payment_at, metadata, updated_at
		 FROM user_plans WHERE email = ?`,
		email,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.Email == "" {
		return nil, nil
	}
	return &record, nil
}
