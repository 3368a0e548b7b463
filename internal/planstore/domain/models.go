package domain

import (
	"time"

	"gorm.io/datatypes"
)

// UserPlanRecord is the durable plan state for one customer identity.
// The normalized email is the natural key.
type UserPlanRecord struct {
	Email             string            `gorm:"primaryKey;column:email" json:"email"`
	CurrentPlan       string            `gorm:"not null" json:"current_plan"`
	Paid              bool              `gorm:"not null;default:false" json:"paid"`
	LastPaymentID     string            `gorm:"column:last_payment_id" json:"last_payment_id"`
	LastPaymentAmount float64           `json:"last_payment_amount"`
	LastPaymentMethod string            `json:"last_payment_method"`
	LastPaymentAt     time.Time         `json:"last_payment_at"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	UpdatedAt         time.Time         `gorm:"not null" json:"updated_at"`
}

func (UserPlanRecord) TableName() string { return "user_plans" }

// PaymentAudit is the most recent payment recorded against the plan.
type PaymentAudit struct {
	ID        string
	Amount    float64
	Method    string
	Timestamp time.Time
}
