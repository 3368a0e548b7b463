package mercadopago

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Payment statuses reported by the gateway.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

var (
	ErrRequestFailed = errors.New("mercadopago_request_failed")
	ErrUnauthorized  = errors.New("mercadopago_unauthorized")
)

// FlexID accepts both the numeric and string forms the gateway uses for ids
// across API revisions.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	s = strings.Trim(s, `"`)
	if s == "null" {
		s = ""
	}
	*f = FlexID(s)
	return nil
}

func (f FlexID) String() string { return string(f) }

type Payer struct {
	Email string `json:"email"`
}

type Item struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency_id,omitempty"`
}

type AdditionalInfo struct {
	Items []Item `json:"items,omitempty"`
}

// Payment is the authoritative payment record as returned by the gateway.
type Payment struct {
	ID                FlexID          `json:"id"`
	Status            string          `json:"status"`
	TransactionAmount float64         `json:"transaction_amount"`
	PaymentMethodID   string          `json:"payment_method_id"`
	PaymentTypeID     string          `json:"payment_type_id"`
	Description       string          `json:"description,omitempty"`
	Payer             *Payer          `json:"payer,omitempty"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	ExternalReference string          `json:"external_reference,omitempty"`
	AdditionalInfo    *AdditionalInfo `json:"additional_info,omitempty"`
	DateCreated       time.Time       `json:"date_created"`
}

// Empty reports whether the record carries no usable payment data.
func (p *Payment) Empty() bool {
	return p == nil || (p.ID == "" && p.Status == "")
}

type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// PreferenceRequest is the checkout preference sent to the gateway.
type PreferenceRequest struct {
	Items             []Item         `json:"items"`
	BackURLs          *BackURLs      `json:"back_urls,omitempty"`
	AutoReturn        string         `json:"auto_return,omitempty"`
	ExternalReference string         `json:"external_reference,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// Preference is the created checkout preference.
type Preference struct {
	ID               FlexID `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}

// SearchOptions narrows a payment search.
type SearchOptions struct {
	Status string
	Limit  int
}

// decodePayment normalizes response-shape drift across gateway API revisions:
// some return the payment record directly, others wrap it under "body" or
// "response".
func decodePayment(data []byte) (*Payment, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	for _, envelope := range []string{"body", "response"} {
		if inner, ok := probe[envelope]; ok {
			var check map[string]json.RawMessage
			if err := json.Unmarshal(inner, &check); err == nil {
				return decodePayment(inner)
			}
		}
	}
	var payment Payment
	if err := json.Unmarshal(data, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
