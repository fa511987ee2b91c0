package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/bookstay/payments/internal/domain/errors"
	"github.com/bookstay/payments/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockGateway is an in-memory PaymentGateway for tests and local development.
// It enforces the same local preconditions as the real gateway, records every
// call, and can be told to fail.
type MockGateway struct {
	mu    sync.Mutex
	calls []MockCall

	failWith error
}

// MockCall records one gateway invocation.
type MockCall struct {
	Operation string
	Args      map[string]any
}

type MockGatewayOption func(*MockGateway)

// WithFailure makes every money-movement and onboarding call fail with the
// given error.
func WithFailure(err error) MockGatewayOption {
	return func(m *MockGateway) { m.failWith = err }
}

func NewMockGateway(opts ...MockGatewayOption) *MockGateway {
	m := &MockGateway{}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Calls returns a copy of the recorded calls.
func (m *MockGateway) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the given operation was invoked.
func (m *MockGateway) CallCount(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Operation == operation {
			n++
		}
	}
	return n
}

func (m *MockGateway) record(operation string, args map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Operation: operation, Args: args})
}

func (m *MockGateway) CreatePaymentIntent(_ context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.record("create_payment_intent", map[string]any{
		"booking_id": req.BookingID.String(),
		"amount":     req.Amount,
		"currency":   req.Currency,
	})
	if m.failWith != nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrPaymentFailed, "failed to create payment intent", m.failWith)
	}
	return m.newIntent(req.Amount, req.Currency, req.Description), nil
}

func (m *MockGateway) CreatePaymentIntentWithTransfer(_ context.Context, req payment.SplitIntentRequest) (*payment.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.record("create_split_payment_intent", map[string]any{
		"booking_id":          req.BookingID.String(),
		"amount":              req.Amount,
		"currency":            req.Currency,
		"destination_account": req.DestinationAccountID,
		"application_fee":     req.ApplicationFee,
	})
	if m.failWith != nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrPaymentFailed, "failed to create transfer payment intent", m.failWith)
	}
	return m.newIntent(req.Amount, req.Currency, req.Description), nil
}

func (m *MockGateway) ConfirmPayment(_ context.Context, intentID, paymentMethodID string) (*payment.Result, error) {
	m.record("confirm_payment", map[string]any{"intent_id": intentID, "payment_method_id": paymentMethodID})
	if m.failWith != nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrPaymentFailed, "failed to confirm payment", m.failWith)
	}
	now := time.Now()
	return &payment.Result{
		IntentID:    intentID,
		ChargeID:    "ch_" + uuid.New().String()[:8],
		Status:      payment.IntentStatusSucceeded,
		ProcessedAt: &now,
	}, nil
}

func (m *MockGateway) RefundPayment(_ context.Context, intentID string, amount *decimal.Decimal, reason string) (*payment.Refund, error) {
	m.record("refund_payment", map[string]any{"intent_id": intentID, "reason": reason})
	if m.failWith != nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrRefundFailed, "failed to refund payment", m.failWith)
	}
	refunded := decimal.Zero
	if amount != nil {
		refunded = *amount
	}
	return &payment.Refund{
		ID:          "re_" + uuid.New().String()[:8],
		IntentID:    intentID,
		Amount:      refunded,
		Status:      "succeeded",
		Reason:      reason,
		ProcessedAt: time.Now(),
	}, nil
}

func (m *MockGateway) GetPaymentStatus(_ context.Context, intentID string) (*payment.StatusInfo, error) {
	m.record("get_payment_status", map[string]any{"intent_id": intentID})
	if m.failWith != nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrPaymentNotFound, "failed to retrieve payment intent", m.failWith)
	}
	status := payment.IntentStatusRequiresPaymentMethod
	return &payment.StatusInfo{
		Status:      status,
		Description: status.Description(),
		LastUpdated: time.Now(),
	}, nil
}

func (m *MockGateway) CreateConnectAccount(_ context.Context, email, accountType string) (string, error) {
	if _, err := payment.ParseAccountType(accountType); err != nil {
		return "", err
	}
	m.record("create_connect_account", map[string]any{"email": email, "account_type": accountType})
	if m.failWith != nil {
		return "", domainErrors.NewGatewayError(domainErrors.ErrInvalidRequest, "failed to create connect account", m.failWith)
	}
	return "acct_" + uuid.New().String()[:8], nil
}

func (m *MockGateway) CreateAccountLink(_ context.Context, accountID, refreshURL, returnURL string) (string, error) {
	m.record("create_account_link", map[string]any{
		"account_id":  accountID,
		"refresh_url": refreshURL,
		"return_url":  returnURL,
	})
	if m.failWith != nil {
		return "", domainErrors.NewGatewayError(domainErrors.ErrInvalidRequest, "failed to create account link", m.failWith)
	}
	return fmt.Sprintf("https://connect.example.com/setup/%s", accountID), nil
}

func (m *MockGateway) CreateCustomer(_ context.Context, email, name, phone string) (*payment.Customer, error) {
	m.record("create_customer", map[string]any{"email": email})
	if m.failWith != nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrInvalidRequest, "failed to create customer", m.failWith)
	}
	return &payment.Customer{
		ID:        "cus_" + uuid.New().String()[:8],
		Email:     email,
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGateway) newIntent(amount decimal.Decimal, currency, description string) *payment.Intent {
	id := "pi_" + uuid.New().String()[:8]
	return &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       payment.IntentStatusRequiresPaymentMethod,
		Amount:       amount,
		// Intents carry upper-case currency regardless of what the caller sent.
		Currency:    strings.ToUpper(currency),
		Description: description,
		CreatedAt:   time.Now(),
	}
}

var _ PaymentGateway = (*MockGateway)(nil)
var _ PaymentGateway = (*StripeGateway)(nil)
