package domain

import (
	"context"
	"errors"
)

type CreatePreferenceRequest struct {
	PlanID   string
	Identity string
}

type CreatePreferenceResponse struct {
	PreferenceID string `json:"preference_id"`
	RedirectURL  string `json:"redirectUrl"`
	Reference    string `json:"reference"`
}

type Service interface {
	CreatePreference(context.Context, CreatePreferenceRequest) (*CreatePreferenceResponse, error)
}

var (
	ErrInvalidPlan     = errors.New("invalid_plan")
	ErrInvalidIdentity = errors.New("invalid_identity")
)
