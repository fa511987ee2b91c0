package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentStatus mirrors the processor's payment intent lifecycle. The gateway
// only ever reports the initial processor state; later transitions happen via
// client confirmation and are not tracked locally.
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusSucceeded             IntentStatus = "succeeded"
	IntentStatusCanceled              IntentStatus = "canceled"
)

// Description returns a human-readable description of the status.
func (s IntentStatus) Description() string {
	switch s {
	case IntentStatusRequiresPaymentMethod:
		return "Payment method is required"
	case IntentStatusRequiresConfirmation:
		return "Payment requires confirmation"
	case IntentStatusRequiresAction:
		return "Payment requires additional action"
	case IntentStatusRequiresCapture:
		return "Payment is authorized and requires capture"
	case IntentStatusProcessing:
		return "Payment is being processed"
	case IntentStatusSucceeded:
		return "Payment succeeded"
	case IntentStatusCanceled:
		return "Payment has been canceled"
	default:
		return "Unknown status: " + string(s)
	}
}

// Intent represents one attempt to collect or move money, mapped from a
// single processor response. Amount is in major units with two fractional
// digits, reconstructed from the processor's minor-unit integer; Currency is
// upper-cased locally and lower-cased only on the wire. An Intent is never
// mutated after it is returned.
type Intent struct {
	ID            string
	ClientSecret  string
	Status        IntentStatus
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	Description   string
	CreatedAt     time.Time
}

// Result holds the outcome of confirming a payment intent.
type Result struct {
	IntentID      string
	ChargeID      string
	Status        IntentStatus
	Amount        decimal.Decimal
	Currency      string
	FailureReason string
	ProcessedAt   *time.Time
}

// Refund holds the outcome of refunding a charge.
type Refund struct {
	ID          string
	IntentID    string
	ChargeID    string
	Amount      decimal.Decimal
	Currency    string
	Status      string
	Reason      string
	ProcessedAt time.Time
}

// StatusInfo is a point-in-time view of an intent's processor status.
type StatusInfo struct {
	Status      IntentStatus
	Description string
	LastUpdated time.Time
}

// Customer represents a payer registered with the processor.
type Customer struct {
	ID        string
	Email     string
	Name      string
	Phone     string
	CreatedAt time.Time
}
