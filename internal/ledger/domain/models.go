package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SaleRecord is one reconciled approved payment. Append-only: at most one row
// exists per gateway payment id regardless of how often it is delivered.
type SaleRecord struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	PaymentID   string       `gorm:"uniqueIndex;not null;column:payment_id" json:"payment_id"`
	Identity    string       `gorm:"not null;index" json:"identity"`
	PlanID      string       `gorm:"not null" json:"plan_id"`
	Amount      float64      `gorm:"not null" json:"amount"`
	Method      string       `gorm:"not null" json:"method"`
	PaymentType string       `gorm:"not null" json:"payment_type"`
	Status      string       `gorm:"not null" json:"status"`
	Reference   string       `json:"reference"`
	RecordedAt  time.Time    `gorm:"not null;index" json:"recorded_at"`
}

func (SaleRecord) TableName() string { return "sale_records" }
