package gateway

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	domainErrors "github.com/bookstay/payments/internal/domain/errors"
	"github.com/bookstay/payments/internal/domain/payment"
	"github.com/bookstay/payments/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/form"
)

// fakeBackend is a substituted processor backend. It records every wire call
// and serves canned responses, so tests can assert call counts and parameter
// shapes without a network dependency.
type fakeBackend struct {
	mu    sync.Mutex
	calls []backendCall

	err      error
	intent   *stripe.PaymentIntent
	account  *stripe.Account
	link     *stripe.AccountLink
	refund   *stripe.Refund
	customer *stripe.Customer
}

type backendCall struct {
	method string
	path   string
	params stripe.ParamsContainer
}

func (b *fakeBackend) Call(method, path, _ string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	b.mu.Lock()
	b.calls = append(b.calls, backendCall{method: method, path: path, params: params})
	b.mu.Unlock()

	if b.err != nil {
		return b.err
	}

	switch res := v.(type) {
	case *stripe.PaymentIntent:
		if b.intent != nil {
			*res = *b.intent
		}
	case *stripe.Account:
		if b.account != nil {
			*res = *b.account
		}
	case *stripe.AccountLink:
		if b.link != nil {
			*res = *b.link
		}
	case *stripe.Refund:
		if b.refund != nil {
			*res = *b.refund
		}
	case *stripe.Customer:
		if b.customer != nil {
			*res = *b.customer
		}
	}
	return nil
}

func (b *fakeBackend) CallStreaming(string, string, string, stripe.ParamsContainer, stripe.StreamingLastResponseSetter) error {
	return nil
}

func (b *fakeBackend) CallRaw(string, string, string, *form.Values, *stripe.Params, stripe.LastResponseSetter) error {
	return nil
}

func (b *fakeBackend) CallMultipart(string, string, string, string, *bytes.Buffer, *stripe.Params, stripe.LastResponseSetter) error {
	return nil
}

func (b *fakeBackend) SetMaxNetworkRetries(int64) {}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *fakeBackend) lastCall() backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func newTestGateway(t *testing.T, backend stripe.Backend) *StripeGateway {
	t.Helper()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return NewStripeGateway("sk_test_123", zerolog.Nop(), metrics, WithBackend(backend))
}

func stripeIntent(amountCents int64, currency string) *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		Amount:       amountCents,
		Currency:     stripe.Currency(currency),
		Description:  "Booking payment",
		Created:      1700000000,
	}
}

func TestCreatePaymentIntentWithTransfer_WireFormat(t *testing.T) {
	backend := &fakeBackend{intent: stripeIntent(10000, "eur")}
	g := newTestGateway(t, backend)

	bookingID := uuid.New()
	intent, err := g.CreatePaymentIntentWithTransfer(context.Background(), payment.SplitIntentRequest{
		BookingID:            bookingID,
		Amount:               decimal.RequireFromString("100.00"),
		Currency:             "EUR",
		PaymentMethod:        "CARD",
		Description:          "Booking payment",
		DestinationAccountID: "acct_123",
		ApplicationFee:       decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	// Exactly one atomic processor call.
	require.Equal(t, 1, backend.callCount())
	call := backend.lastCall()
	assert.Equal(t, "POST", call.method)
	assert.Equal(t, "/v1/payment_intents", call.path)

	params, ok := call.params.(*stripe.PaymentIntentParams)
	require.True(t, ok)
	assert.Equal(t, int64(10000), *params.Amount)
	assert.Equal(t, int64(1000), *params.ApplicationFeeAmount)
	assert.Equal(t, "eur", *params.Currency)
	assert.Equal(t, "acct_123", *params.TransferData.Destination)
	assert.True(t, *params.AutomaticPaymentMethods.Enabled)

	// Metadata contract: exactly these three keys, all non-empty.
	require.Len(t, params.Metadata, 3)
	assert.Equal(t, bookingID.String(), params.Metadata["booking_id"])
	assert.Equal(t, "CARD", params.Metadata["payment_method"])
	assert.Equal(t, "acct_123", params.Metadata["destination_account"])

	// The local model round-trips the processor's minor units.
	assert.True(t, intent.Amount.Equal(decimal.RequireFromString("100.00")), "got %s", intent.Amount)
	assert.Equal(t, "EUR", intent.Currency)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, payment.IntentStatusRequiresPaymentMethod, intent.Status)
}

func TestCreatePaymentIntentWithTransfer_FeeExceedsAmount_NoWireCall(t *testing.T) {
	backend := &fakeBackend{intent: stripeIntent(5000, "usd")}
	g := newTestGateway(t, backend)

	_, err := g.CreatePaymentIntentWithTransfer(context.Background(), payment.SplitIntentRequest{
		BookingID:            uuid.New(),
		Amount:               decimal.RequireFromString("50.00"),
		Currency:             "USD",
		PaymentMethod:        "CARD",
		DestinationAccountID: "acct_123",
		ApplicationFee:       decimal.RequireFromString("60.00"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrInvalidRequest))
	assert.Equal(t, 0, backend.callCount(), "precondition violations must not reach the processor")
}

func TestCreatePaymentIntent_Metadata(t *testing.T) {
	backend := &fakeBackend{intent: stripeIntent(2550, "usd")}
	g := newTestGateway(t, backend)

	bookingID := uuid.New()
	intent, err := g.CreatePaymentIntent(context.Background(), payment.CreateIntentRequest{
		BookingID:     bookingID,
		Amount:        decimal.RequireFromString("25.50"),
		Currency:      "usd",
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	params := backend.lastCall().params.(*stripe.PaymentIntentParams)
	require.Len(t, params.Metadata, 2)
	assert.Equal(t, bookingID.String(), params.Metadata["booking_id"])
	assert.Equal(t, "CARD", params.Metadata["payment_method"])
	assert.Nil(t, params.ApplicationFeeAmount)
	assert.Nil(t, params.TransferData)

	assert.Equal(t, "USD", intent.Currency)
	assert.True(t, intent.Amount.Equal(decimal.RequireFromString("25.50")))
}

func TestCreatePaymentIntent_ProcessorFailure(t *testing.T) {
	backend := &fakeBackend{err: &stripe.Error{Msg: "Your card was declined.", Type: stripe.ErrorTypeCard}}
	g := newTestGateway(t, backend)

	_, err := g.CreatePaymentIntent(context.Background(), payment.CreateIntentRequest{
		BookingID:     uuid.New(),
		Amount:        decimal.RequireFromString("10.00"),
		Currency:      "EUR",
		PaymentMethod: "CARD",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrPaymentFailed))
	assert.Contains(t, err.Error(), "Your card was declined.")

	// The processor failure stays reachable as the cause.
	var stripeErr *stripe.Error
	assert.True(t, errors.As(err, &stripeErr))
}

func TestCreatePaymentIntentWithTransfer_ProcessorFailure(t *testing.T) {
	backend := &fakeBackend{err: &stripe.Error{Msg: "No such destination account.", Type: stripe.ErrorTypeInvalidRequest}}
	g := newTestGateway(t, backend)

	_, err := g.CreatePaymentIntentWithTransfer(context.Background(), payment.SplitIntentRequest{
		BookingID:            uuid.New(),
		Amount:               decimal.RequireFromString("100.00"),
		Currency:             "EUR",
		PaymentMethod:        "CARD",
		DestinationAccountID: "acct_missing",
		ApplicationFee:       decimal.RequireFromString("10.00"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrPaymentFailed))
}

func TestCreateConnectAccount(t *testing.T) {
	backend := &fakeBackend{account: &stripe.Account{ID: "acct_456"}}
	g := newTestGateway(t, backend)

	accountID, err := g.CreateConnectAccount(context.Background(), "supplier@example.com", "express")
	require.NoError(t, err)
	assert.Equal(t, "acct_456", accountID)

	require.Equal(t, 1, backend.callCount())
	call := backend.lastCall()
	assert.Equal(t, "/v1/accounts", call.path)

	params := call.params.(*stripe.AccountParams)
	assert.Equal(t, "express", *params.Type)
	assert.Equal(t, "supplier@example.com", *params.Email)
	assert.True(t, *params.Capabilities.CardPayments.Requested)
	assert.True(t, *params.Capabilities.Transfers.Requested)
}

func TestCreateConnectAccount_UnsupportedType_NoWireCall(t *testing.T) {
	backend := &fakeBackend{}
	g := newTestGateway(t, backend)

	_, err := g.CreateConnectAccount(context.Background(), "supplier@example.com", "premium")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrInvalidRequest))
	assert.Equal(t, 0, backend.callCount())
}

func TestCreateConnectAccount_ProcessorFailure(t *testing.T) {
	backend := &fakeBackend{err: &stripe.Error{Msg: "Account creation is not allowed.", Type: stripe.ErrorTypeInvalidRequest}}
	g := newTestGateway(t, backend)

	_, err := g.CreateConnectAccount(context.Background(), "supplier@example.com", "express")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrInvalidRequest))
}

func TestCreateAccountLink(t *testing.T) {
	backend := &fakeBackend{link: &stripe.AccountLink{URL: "https://connect.stripe.com/setup/s/abc"}}
	g := newTestGateway(t, backend)

	url, err := g.CreateAccountLink(context.Background(), "acct_1", "https://app/refresh", "https://app/return")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/setup/s/abc", url)

	require.Equal(t, 1, backend.callCount())
	call := backend.lastCall()
	assert.Equal(t, "/v1/account_links", call.path)

	params := call.params.(*stripe.AccountLinkParams)
	assert.Equal(t, "acct_1", *params.Account)
	assert.Equal(t, "https://app/refresh", *params.RefreshURL)
	assert.Equal(t, "https://app/return", *params.ReturnURL)
	assert.Equal(t, "account_onboarding", *params.Type)
}

func TestCreateAccountLink_ProcessorFailure(t *testing.T) {
	backend := &fakeBackend{err: &stripe.Error{Msg: "Invalid return URL.", Type: stripe.ErrorTypeInvalidRequest}}
	g := newTestGateway(t, backend)

	_, err := g.CreateAccountLink(context.Background(), "acct_1", "https://app/refresh", "bad-url")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "Invalid return URL.")
}

func TestConfirmPayment(t *testing.T) {
	backend := &fakeBackend{intent: &stripe.PaymentIntent{
		ID:           "pi_123",
		Status:       stripe.PaymentIntentStatusSucceeded,
		Amount:       10000,
		Currency:     "eur",
		LatestCharge: &stripe.Charge{ID: "ch_789"},
	}}
	g := newTestGateway(t, backend)

	result, err := g.ConfirmPayment(context.Background(), "pi_123", "pm_456")
	require.NoError(t, err)

	assert.Equal(t, "pi_123", result.IntentID)
	assert.Equal(t, "ch_789", result.ChargeID)
	assert.Equal(t, payment.IntentStatusSucceeded, result.Status)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, "EUR", result.Currency)
	require.NotNil(t, result.ProcessedAt)

	params := backend.lastCall().params.(*stripe.PaymentIntentConfirmParams)
	assert.Equal(t, "pm_456", *params.PaymentMethod)
}

func TestConfirmPayment_ProcessorFailure(t *testing.T) {
	backend := &fakeBackend{err: &stripe.Error{Msg: "This PaymentIntent could not be confirmed.", Type: stripe.ErrorTypeInvalidRequest}}
	g := newTestGateway(t, backend)

	_, err := g.ConfirmPayment(context.Background(), "pi_123", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrPaymentFailed))
}

func TestRefundPayment(t *testing.T) {
	backend := &fakeBackend{
		intent: &stripe.PaymentIntent{
			ID:           "pi_123",
			Status:       stripe.PaymentIntentStatusSucceeded,
			Amount:       10000,
			Currency:     "eur",
			LatestCharge: &stripe.Charge{ID: "ch_789"},
		},
		refund: &stripe.Refund{
			ID:       "re_1",
			Amount:   2500,
			Currency: "eur",
			Status:   stripe.RefundStatusSucceeded,
			Created:  1700000100,
		},
	}
	g := newTestGateway(t, backend)

	amount := decimal.RequireFromString("25.00")
	refund, err := g.RefundPayment(context.Background(), "pi_123", &amount, "duplicate")
	require.NoError(t, err)

	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, "ch_789", refund.ChargeID)
	assert.True(t, refund.Amount.Equal(amount))
	assert.Equal(t, "EUR", refund.Currency)

	// Retrieve then refund: two wire calls.
	require.Equal(t, 2, backend.callCount())
	params := backend.lastCall().params.(*stripe.RefundParams)
	assert.Equal(t, "ch_789", *params.Charge)
	assert.Equal(t, int64(2500), *params.Amount)
	assert.Equal(t, "duplicate", *params.Reason)
}

func TestRefundPayment_NoCharge(t *testing.T) {
	backend := &fakeBackend{intent: &stripe.PaymentIntent{
		ID:     "pi_123",
		Status: stripe.PaymentIntentStatusRequiresPaymentMethod,
	}}
	g := newTestGateway(t, backend)

	_, err := g.RefundPayment(context.Background(), "pi_123", nil, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrRefundFailed))
	assert.Equal(t, 1, backend.callCount(), "no refund call should be issued without a charge")
}

func TestGetPaymentStatus(t *testing.T) {
	backend := &fakeBackend{intent: &stripe.PaymentIntent{
		ID:      "pi_123",
		Status:  stripe.PaymentIntentStatusProcessing,
		Created: 1700000000,
	}}
	g := newTestGateway(t, backend)

	info, err := g.GetPaymentStatus(context.Background(), "pi_123")
	require.NoError(t, err)

	assert.Equal(t, payment.IntentStatusProcessing, info.Status)
	assert.Equal(t, "Payment is being processed", info.Description)
}

func TestGetPaymentStatus_ProcessorFailure(t *testing.T) {
	backend := &fakeBackend{err: &stripe.Error{Msg: "No such payment_intent.", Type: stripe.ErrorTypeInvalidRequest}}
	g := newTestGateway(t, backend)

	_, err := g.GetPaymentStatus(context.Background(), "pi_missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrPaymentNotFound))
}

func TestCreateCustomer(t *testing.T) {
	backend := &fakeBackend{customer: &stripe.Customer{
		ID:      "cus_1",
		Email:   "guest@example.com",
		Name:    "Guest",
		Created: 1700000000,
	}}
	g := newTestGateway(t, backend)

	customer, err := g.CreateCustomer(context.Background(), "guest@example.com", "Guest", "")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customer.ID)
	assert.Equal(t, "guest@example.com", customer.Email)

	params := backend.lastCall().params.(*stripe.CustomerParams)
	assert.Nil(t, params.Phone)
}

func TestSharedClient_InitializedOnce(t *testing.T) {
	// Redundant concurrent initialization converges to a single configured
	// client: every caller observes the same instance.
	const n = 32
	var wg sync.WaitGroup
	results := make([]any, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sharedAPI("sk_test_123")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}
