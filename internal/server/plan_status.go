package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type planStatusPayment struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
}

type planStatusResponse struct {
	Active      bool               `json:"active"`
	Plan        *string            `json:"plan"`
	LastPayment *planStatusPayment `json:"lastPayment,omitempty"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
}

// GetPlanStatus reports whether the identity has an active plan. An identity
// that never purchased is an expected outcome and answers 200, not 404.
func (s *Server) GetPlanStatus(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	record, err := s.planSvc.Get(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusOK, planStatusResponse{Active: false, Plan: nil})
		return
	}

	plan := record.CurrentPlan
	c.JSON(http.StatusOK, planStatusResponse{
		Active: record.Paid && plan != "",
		Plan:   &plan,
		LastPayment: &planStatusPayment{
			ID:        record.LastPaymentID,
			Amount:    record.LastPaymentAmount,
			Method:    record.LastPaymentMethod,
			Timestamp: record.LastPaymentAt,
		},
		UpdatedAt: &record.UpdatedAt,
	})
}
