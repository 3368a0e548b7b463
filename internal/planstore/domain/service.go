package domain

import (
	"context"
	"errors"
)

type UpsertPlanRequest struct {
	Identity string
	PlanID   string
	Audit    PaymentAudit
	Metadata map[string]any
}

type Service interface {
	// Upsert merges the plan activation into the identity's record without
	// disturbing fields it does not own. Safe to repeat.
	Upsert(context.Context, UpsertPlanRequest) error
	// Get returns the record for the identity, or (nil, nil) when none
	// exists; never having purchased is an expected outcome.
	Get(ctx context.Context, identity string) (*UserPlanRecord, error)
}

var (
	ErrInvalidIdentity = errors.New("invalid_identity")
	ErrInvalidPlan     = errors.New("invalid_plan")
)
