package repository

import (
	"context"

	"github.com/innovatex/planpay/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, record *domain.SaleRecord) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO sale_records (
			id, payment_id, identity, plan_id, amount, method,
			payment_type, status, reference, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (payment_id) DO NOTHING`,
		record.ID,
		record.PaymentID,
		record.Identity,
		record.PlanID,
		record.Amount,
		record.Method,
		record.PaymentType,
		record.Status,
		record.Reference,
		record.RecordedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.SaleRecord, error) {
	var records []domain.SaleRecord
	stmt := db.WithContext(ctx).Model(&domain.SaleRecord{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ReferenceTag != "" {
		stmt = stmt.Where("reference LIKE ?", "%"+filter.ReferenceTag+"%")
	}
	if len(filter.PaymentTypes) > 0 {
		stmt = stmt.Where("payment_type IN ?", filter.PaymentTypes)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	err := stmt.
		Order("recorded_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
