package payment

import (
	"strings"

	domainErrors "github.com/bookstay/payments/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateIntentRequest is the input for creating a plain (non-split) payment
// intent for a booking.
type CreateIntentRequest struct {
	BookingID     uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	Description   string
}

// Validate checks the request locally. A violation never reaches the wire.
func (r CreateIntentRequest) Validate() error {
	if r.BookingID == uuid.Nil {
		return domainErrors.NewValidationError("booking_id", "required")
	}
	if !r.Amount.IsPositive() {
		return domainErrors.NewValidationError("amount", "must be greater than zero")
	}
	if len(r.Currency) != 3 {
		return domainErrors.NewValidationError("currency", "must be a 3-letter ISO code")
	}
	if r.PaymentMethod == "" {
		return domainErrors.NewValidationError("payment_method", "required")
	}
	return nil
}

// SplitIntentRequest is the input for creating a split (destination) payment
// intent: the full Amount is charged, ApplicationFee is retained by the
// platform, and the remainder is transferred to DestinationAccountID in the
// same processor call.
type SplitIntentRequest struct {
	BookingID            uuid.UUID
	Amount               decimal.Decimal
	Currency             string
	PaymentMethod        string
	Description          string
	DestinationAccountID string
	ApplicationFee       decimal.Decimal
}

// Validate enforces 0 <= ApplicationFee <= Amount plus the plain-intent
// constraints before any processor round-trip.
func (r SplitIntentRequest) Validate() error {
	plain := CreateIntentRequest{
		BookingID:     r.BookingID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
	}
	if err := plain.Validate(); err != nil {
		return err
	}
	if r.DestinationAccountID == "" {
		return domainErrors.NewValidationError("destination_account_id", "required")
	}
	if r.ApplicationFee.IsNegative() {
		return domainErrors.NewValidationError("application_fee_amount", "must not be negative")
	}
	if r.ApplicationFee.GreaterThan(r.Amount) {
		return domainErrors.NewValidationError("application_fee_amount", "must not exceed amount")
	}
	return nil
}

// AccountType is the closed set of connected account types the processor
// supports.
type AccountType string

const (
	AccountTypeStandard AccountType = "standard"
	AccountTypeExpress  AccountType = "express"
	AccountTypeCustom   AccountType = "custom"
)

// ParseAccountType maps a caller-supplied account type onto the processor's
// closed enumeration. Unsupported values are rejected locally.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountTypeStandard:
		return AccountTypeStandard, nil
	case AccountTypeExpress:
		return AccountTypeExpress, nil
	case AccountTypeCustom:
		return AccountTypeCustom, nil
	default:
		return "", domainErrors.NewValidationError("account_type", "unsupported account type: "+s)
	}
}
