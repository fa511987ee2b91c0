package gateway

import (
	"context"

	"github.com/bookstay/payments/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the capability surface the rest of the platform depends
// on. Callers (booking checkout, supplier payout/onboarding) never see
// processor types: inputs and outputs are local models, and every failure is
// classified into the kinds in internal/domain/errors.
//
// All operations are synchronous, blocking calls over the network boundary.
// No ordering is guaranteed between concurrent calls, and no retries happen
// inside the gateway; retrying is a caller policy.
type PaymentGateway interface {
	// CreatePaymentIntent creates a standard payment intent for a booking.
	// Processor failures surface as ErrPaymentFailed.
	CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error)

	// CreatePaymentIntentWithTransfer creates a split payment intent: the
	// full amount is charged, the application fee is retained by the
	// platform, and the remainder is transferred to the destination account
	// in the same processor operation. The fee precondition is checked
	// locally; violations never reach the processor. Processor failures
	// surface as ErrPaymentFailed.
	CreatePaymentIntentWithTransfer(ctx context.Context, req payment.SplitIntentRequest) (*payment.Intent, error)

	// ConfirmPayment confirms a payment intent, optionally attaching the
	// given payment method first. Processor failures surface as
	// ErrPaymentFailed.
	ConfirmPayment(ctx context.Context, intentID, paymentMethodID string) (*payment.Result, error)

	// RefundPayment refunds the intent's latest charge. A nil amount means a
	// full refund. Failures surface as ErrRefundFailed.
	RefundPayment(ctx context.Context, intentID string, amount *decimal.Decimal, reason string) (*payment.Refund, error)

	// GetPaymentStatus returns the intent's current processor status.
	// Failures surface as ErrPaymentNotFound.
	GetPaymentStatus(ctx context.Context, intentID string) (*payment.StatusInfo, error)

	// CreateConnectAccount registers a new connected supplier account capable
	// of receiving card payments and transfers, returning its opaque account
	// id. Unsupported account types are rejected locally; processor failures
	// surface as ErrInvalidRequest.
	CreateConnectAccount(ctx context.Context, email, accountType string) (string, error)

	// CreateAccountLink produces a single-use onboarding URL for a connected
	// account. Processor failures surface as ErrInvalidRequest.
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)

	// CreateCustomer registers a payer with the processor. Processor failures
	// surface as ErrInvalidRequest.
	CreateCustomer(ctx context.Context, email, name, phone string) (*payment.Customer, error)
}
