package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/innovatex/planpay/internal/checkout/domain"
	planstoredomain "github.com/innovatex/planpay/internal/planstore/domain"
	reconciledomain "github.com/innovatex/planpay/internal/reconcile/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, checkoutdomain.ErrInvalidPlan):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid plan",
		}
	case errors.Is(err, checkoutdomain.ErrInvalidIdentity),
		errors.Is(err, planstoredomain.ErrInvalidIdentity):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid email",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid request",
		}
	case errors.Is(err, reconciledomain.ErrMalformedNotification):
		return http.StatusBadRequest, errorPayload{
			Type:    "malformed_notification",
			Message: "notification is missing a payment id",
		}
	case errors.Is(err, reconciledomain.ErrGatewayUnavailable):
		return http.StatusInternalServerError, errorPayload{
			Type:    "gateway_unavailable",
			Message: "payment gateway unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
