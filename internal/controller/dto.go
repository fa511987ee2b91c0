package controller

import (
	"time"

	"github.com/bookstay/payments/internal/domain/payment"
)

// --- Request DTOs ---
// Monetary amounts travel as decimal strings ("100.00"), never as JSON
// numbers: float64 would lose cents. Controllers parse them with
// shopspring/decimal before calling the gateway.

// CreateIntentRequest holds the input for creating a plain payment intent.
type CreateIntentRequest struct {
	BookingID     string `json:"booking_id" validate:"required,uuid"`
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency" validate:"required,len=3"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	Description   string `json:"description,omitempty"`
}

// CreateSplitIntentRequest holds the input for creating a split payment
// intent. ApplicationFeeAmount is optional; when absent the platform's
// configured fee percentage is applied.
type CreateSplitIntentRequest struct {
	BookingID            string  `json:"booking_id" validate:"required,uuid"`
	Amount               string  `json:"amount" validate:"required"`
	Currency             string  `json:"currency" validate:"required,len=3"`
	PaymentMethod        string  `json:"payment_method" validate:"required"`
	Description          string  `json:"description,omitempty"`
	DestinationAccountID string  `json:"destination_account_id" validate:"required"`
	ApplicationFeeAmount *string `json:"application_fee_amount,omitempty"`
}

// ConfirmPaymentRequest holds the input for confirming a payment intent.
type ConfirmPaymentRequest struct {
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

// RefundPaymentRequest holds the input for refunding a payment. A nil amount
// requests a full refund.
type RefundPaymentRequest struct {
	Amount *string `json:"amount,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// CreateConnectAccountRequest holds the input for onboarding a supplier.
type CreateConnectAccountRequest struct {
	Email       string `json:"email" validate:"required,email"`
	AccountType string `json:"account_type" validate:"required"`
}

// CreateAccountLinkRequest holds the input for generating an onboarding link.
type CreateAccountLinkRequest struct {
	RefreshURL string `json:"refresh_url" validate:"required,url"`
	ReturnURL  string `json:"return_url" validate:"required,url"`
}

// CreateCustomerRequest holds the input for registering a payer.
type CreateCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
}

// --- Response DTOs ---

// IntentResponse represents a payment intent in API responses.
type IntentResponse struct {
	ID            string    `json:"id"`
	ClientSecret  string    `json:"client_secret,omitempty"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResultResponse represents a payment confirmation outcome.
type ResultResponse struct {
	IntentID      string     `json:"intent_id"`
	ChargeID      string     `json:"charge_id,omitempty"`
	Status        string     `json:"status"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

// RefundResponse represents a refund outcome.
type RefundResponse struct {
	ID          string    `json:"id"`
	IntentID    string    `json:"intent_id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// StatusResponse represents an intent's current processor status.
type StatusResponse struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}

// ConnectAccountResponse represents a newly created connected account.
type ConnectAccountResponse struct {
	AccountID string `json:"account_id"`
}

// AccountLinkResponse represents a single-use onboarding URL.
type AccountLinkResponse struct {
	URL string `json:"url"`
}

// CustomerResponse represents a registered payer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromIntent converts a domain intent to its API representation.
func FromIntent(intent *payment.Intent) IntentResponse {
	return IntentResponse{
		ID:            intent.ID,
		ClientSecret:  intent.ClientSecret,
		Status:        string(intent.Status),
		Amount:        intent.Amount.StringFixed(2),
		Currency:      intent.Currency,
		PaymentMethod: intent.PaymentMethod,
		Description:   intent.Description,
		CreatedAt:     intent.CreatedAt,
	}
}

// FromResult converts a confirmation result to its API representation.
func FromResult(result *payment.Result) ResultResponse {
	return ResultResponse{
		IntentID:      result.IntentID,
		ChargeID:      result.ChargeID,
		Status:        string(result.Status),
		Amount:        result.Amount.StringFixed(2),
		Currency:      result.Currency,
		FailureReason: result.FailureReason,
		ProcessedAt:   result.ProcessedAt,
	}
}

// FromRefund converts a refund to its API representation.
func FromRefund(refund *payment.Refund) RefundResponse {
	return RefundResponse{
		ID:          refund.ID,
		IntentID:    refund.IntentID,
		Amount:      refund.Amount.StringFixed(2),
		Currency:    refund.Currency,
		Status:      refund.Status,
		Reason:      refund.Reason,
		ProcessedAt: refund.ProcessedAt,
	}
}

// FromStatusInfo converts a status snapshot to its API representation.
func FromStatusInfo(info *payment.StatusInfo) StatusResponse {
	return StatusResponse{
		Status:      string(info.Status),
		Description: info.Description,
		LastUpdated: info.LastUpdated,
	}
}

// FromCustomer converts a customer to its API representation.
func FromCustomer(customer *payment.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Email:     customer.Email,
		Name:      customer.Name,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
	}
}
