package domain

import "errors"

// Notification is the untrusted webhook body sent by the gateway.
type Notification struct {
	Type string           `json:"type"`
	Data NotificationData `json:"data"`
}

type NotificationData struct {
	ID string `json:"id"`
}

type OutcomeStatus string

const (
	// OutcomeCommitted means the payment was reconciled and persisted.
	OutcomeCommitted OutcomeStatus = "committed"
	// OutcomeIgnored means the notification was acknowledged without
	// persistence: wrong event type or a non-approved payment.
	OutcomeIgnored OutcomeStatus = "ignored"
)

type Outcome struct {
	Status    OutcomeStatus
	Reason    string
	PaymentID string
	Identity  string
	PlanID    string
}

var (
	// ErrMalformedNotification: the body lacks a payment id. Retrying the
	// same body cannot succeed, the caller answers 400.
	ErrMalformedNotification = errors.New("malformed_notification")
	// ErrGatewayUnavailable: the authoritative record could not be fetched
	// after the bounded retry. Surfaced as 500 so the gateway retries.
	ErrGatewayUnavailable = errors.New("gateway_unavailable")
	// ErrIncompleteExtraction: no fallback source yielded both identity and
	// plan. Acknowledged with 200, retrying cannot change the extraction.
	ErrIncompleteExtraction = errors.New("incomplete_extraction")
)
