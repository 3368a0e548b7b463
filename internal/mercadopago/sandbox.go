package mercadopago

import (
	"time"

	"github.com/innovatex/planpay/internal/reference"
)

// TestPaymentID is the reserved payment id used to exercise the webhook path
// end to end without a real charge. Only honored outside production.
const TestPaymentID = "test-pago"

// SandboxIdentity is the fixed buyer identity carried by the synthetic record.
const SandboxIdentity = "comprador.sandbox@innovatex.app"

// SandboxPayment returns the fixed approved record for TestPaymentID.
func SandboxPayment() *Payment {
	return &Payment{
		ID:                FlexID(TestPaymentID),
		Status:            StatusApproved,
		TransactionAmount: 1000,
		PaymentMethodID:   "account_money",
		PaymentTypeID:     "account_money",
		Payer:             &Payer{Email: SandboxIdentity},
		Metadata:          map[string]any{"plan": "basico"},
		ExternalReference: reference.Encode(SandboxIdentity, "basico"),
		DateCreated:       time.Now().UTC(),
	}
}
