package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/innovatex/planpay/internal/checkout/domain"
)

type createPreferenceRequest struct {
	Plan      string `json:"plan"`
	UserEmail string `json:"userEmail"`
}

func (s *Server) CreatePreference(c *gin.Context) {
	var req createPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.checkoutSvc.CreatePreference(c.Request.Context(), checkoutdomain.CreatePreferenceRequest{
		PlanID:   req.Plan,
		Identity: req.UserEmail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
