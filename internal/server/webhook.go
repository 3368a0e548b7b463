package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	reconciledomain "github.com/innovatex/planpay/internal/reconcile/domain"
	"go.uber.org/zap"
)

// HandleWebhook acknowledges gateway notifications. 200 stops the gateway's
// retries, so it is returned for every outcome where a retry cannot help:
// committed, ignored and incomplete-extraction. 400 flags a body without a
// payment id; 500 asks the gateway to retry after a transient failure.
func (s *Server) HandleWebhook(c *gin.Context) {
	var n reconciledomain.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		AbortWithError(c, reconciledomain.ErrMalformedNotification)
		return
	}

	outcome, err := s.reconcileSvc.Process(c.Request.Context(), n)
	if err != nil {
		if errors.Is(err, reconciledomain.ErrIncompleteExtraction) {
			s.log.Warn("webhook acknowledged without reconciliation",
				zap.String("payment_id", n.Data.ID),
				zap.Error(err),
			)
			c.JSON(http.StatusOK, gin.H{"status": "incomplete_extraction"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": string(outcome.Status),
		"reason": outcome.Reason,
	})
}
