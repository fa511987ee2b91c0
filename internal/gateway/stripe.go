package gateway

import (
	"context"
	"strings"
	"time"

	domainErrors "github.com/bookstay/payments/internal/domain/errors"
	"github.com/bookstay/payments/internal/domain/payment"
	"github.com/bookstay/payments/internal/infrastructure/observability"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// StripeGateway implements PaymentGateway against the Stripe API. All wire
// calls go through a circuit breaker; every processor failure is wrapped
// exactly once at the call site into a classified GatewayError.
type StripeGateway struct {
	apiKey  string
	api     *client.API // set only when a backend is substituted; otherwise the shared client is used
	breaker *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// StripeGatewayOption configures a StripeGateway.
type StripeGatewayOption func(*StripeGateway)

// WithBackend substitutes the wire backend. Tests use this to observe calls
// and inject processor responses without a live network dependency.
func WithBackend(backend stripe.Backend) StripeGatewayOption {
	return func(g *StripeGateway) {
		g.api = newAPIWithBackend(g.apiKey, backend)
	}
}

// NewStripeGateway creates a Stripe-backed payment gateway. The underlying
// client is configured lazily on first use and shared process-wide.
func NewStripeGateway(apiKey string, logger zerolog.Logger, metrics *observability.Metrics, opts ...StripeGatewayOption) *StripeGateway {
	g := &StripeGateway{
		apiKey:  apiKey,
		logger:  logger.With().Str("component", "stripe_gateway").Logger(),
		metrics: metrics,
	}
	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
	for _, o := range opts {
		o(g)
	}
	return g
}

// client ensures the processor client is configured before any wire call.
// Safe to invoke redundantly from concurrent callers.
func (g *StripeGateway) client() *client.API {
	if g.api != nil {
		return g.api
	}
	return sharedAPI(g.apiKey)
}

// wire issues a single processor call through the circuit breaker and wraps
// any failure into a GatewayError of the given kind. This is the only place
// where processor errors are caught.
func (g *StripeGateway) wire(op string, kind error, action string, call func(api *client.API) (any, error)) (any, error) {
	api := g.client()

	start := time.Now()
	res, err := g.breaker.Execute(func() (any, error) {
		return call(api)
	})
	duration := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	g.metrics.GatewayOperationsTotal.WithLabelValues(op, outcome).Inc()
	g.metrics.GatewayOperationDuration.WithLabelValues(op).Observe(duration.Seconds())

	if err != nil {
		g.logger.Error().Err(err).Str("operation", op).Msg("processor call failed")
		return nil, domainErrors.NewGatewayError(kind, "failed to "+action, err)
	}

	g.logger.Debug().Str("operation", op).Dur("duration", duration).Msg("processor call completed")
	return res, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(payment.ToMinorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.AddMetadata("booking_id", req.BookingID.String())
	params.AddMetadata("payment_method", req.PaymentMethod)

	res, err := g.wire("create_payment_intent", domainErrors.ErrPaymentFailed, "create payment intent",
		func(api *client.API) (any, error) {
			return api.PaymentIntents.New(params)
		})
	if err != nil {
		return nil, err
	}

	return intentFromStripe(res.(*stripe.PaymentIntent)), nil
}

func (g *StripeGateway) CreatePaymentIntentWithTransfer(ctx context.Context, req payment.SplitIntentRequest) (*payment.Intent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Params:               stripe.Params{Context: ctx},
		Amount:               stripe.Int64(payment.ToMinorUnits(req.Amount)),
		Currency:             stripe.String(strings.ToLower(req.Currency)),
		ApplicationFeeAmount: stripe.Int64(payment.ToMinorUnits(req.ApplicationFee)),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.DestinationAccountID),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.AddMetadata("booking_id", req.BookingID.String())
	params.AddMetadata("payment_method", req.PaymentMethod)
	params.AddMetadata("destination_account", req.DestinationAccountID)

	res, err := g.wire("create_split_payment_intent", domainErrors.ErrPaymentFailed, "create transfer payment intent",
		func(api *client.API) (any, error) {
			return api.PaymentIntents.New(params)
		})
	if err != nil {
		return nil, err
	}

	return intentFromStripe(res.(*stripe.PaymentIntent)), nil
}

func (g *StripeGateway) ConfirmPayment(ctx context.Context, intentID, paymentMethodID string) (*payment.Result, error) {
	params := &stripe.PaymentIntentConfirmParams{
		Params: stripe.Params{Context: ctx},
	}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	}

	res, err := g.wire("confirm_payment", domainErrors.ErrPaymentFailed, "confirm payment",
		func(api *client.API) (any, error) {
			return api.PaymentIntents.Confirm(intentID, params)
		})
	if err != nil {
		return nil, err
	}

	pi := res.(*stripe.PaymentIntent)
	result := &payment.Result{
		IntentID: pi.ID,
		Status:   payment.IntentStatus(pi.Status),
		Amount:   payment.FromMinorUnits(pi.Amount),
		Currency: strings.ToUpper(string(pi.Currency)),
	}
	if pi.LatestCharge != nil {
		result.ChargeID = pi.LatestCharge.ID
	}
	if pi.LastPaymentError != nil {
		result.FailureReason = pi.LastPaymentError.Msg
	}
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		now := time.Now()
		result.ProcessedAt = &now
	}
	return result, nil
}

func (g *StripeGateway) RefundPayment(ctx context.Context, intentID string, amount *decimal.Decimal, reason string) (*payment.Refund, error) {
	res, err := g.wire("refund_payment", domainErrors.ErrRefundFailed, "refund payment",
		func(api *client.API) (any, error) {
			return api.PaymentIntents.Get(intentID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
		})
	if err != nil {
		return nil, err
	}

	pi := res.(*stripe.PaymentIntent)
	if pi.LatestCharge == nil {
		return nil, domainErrors.NewGatewayError(domainErrors.ErrRefundFailed, "no charge found for payment intent", nil)
	}

	refundParams := &stripe.RefundParams{
		Params: stripe.Params{Context: ctx},
		Charge: stripe.String(pi.LatestCharge.ID),
		Reason: stripe.String(string(mapRefundReason(reason))),
	}
	if amount != nil {
		refundParams.Amount = stripe.Int64(payment.ToMinorUnits(*amount))
	}

	res, err = g.wire("refund_payment", domainErrors.ErrRefundFailed, "refund payment",
		func(api *client.API) (any, error) {
			return api.Refunds.New(refundParams)
		})
	if err != nil {
		return nil, err
	}

	refund := res.(*stripe.Refund)
	return &payment.Refund{
		ID:          refund.ID,
		IntentID:    intentID,
		ChargeID:    pi.LatestCharge.ID,
		Amount:      payment.FromMinorUnits(refund.Amount),
		Currency:    strings.ToUpper(string(refund.Currency)),
		Status:      string(refund.Status),
		Reason:      reason,
		ProcessedAt: time.Unix(refund.Created, 0),
	}, nil
}

func (g *StripeGateway) GetPaymentStatus(ctx context.Context, intentID string) (*payment.StatusInfo, error) {
	res, err := g.wire("get_payment_status", domainErrors.ErrPaymentNotFound, "retrieve payment intent",
		func(api *client.API) (any, error) {
			return api.PaymentIntents.Get(intentID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
		})
	if err != nil {
		return nil, err
	}

	pi := res.(*stripe.PaymentIntent)
	status := payment.IntentStatus(pi.Status)
	return &payment.StatusInfo{
		Status:      status,
		Description: status.Description(),
		LastUpdated: time.Unix(pi.Created, 0),
	}, nil
}

func (g *StripeGateway) CreateConnectAccount(ctx context.Context, email, accountType string) (string, error) {
	acctType, err := payment.ParseAccountType(accountType)
	if err != nil {
		return "", err
	}

	params := &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
		Type:   stripe.String(string(acctType)),
		Email:  stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}

	res, err := g.wire("create_connect_account", domainErrors.ErrInvalidRequest, "create connect account",
		func(api *client.API) (any, error) {
			return api.Accounts.New(params)
		})
	if err != nil {
		return "", err
	}

	return res.(*stripe.Account).ID, nil
}

func (g *StripeGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Params:     stripe.Params{Context: ctx},
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}

	res, err := g.wire("create_account_link", domainErrors.ErrInvalidRequest, "create account link",
		func(api *client.API) (any, error) {
			return api.AccountLinks.New(params)
		})
	if err != nil {
		return "", err
	}

	return res.(*stripe.AccountLink).URL, nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name, phone string) (*payment.Customer, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	if phone != "" {
		params.Phone = stripe.String(phone)
	}

	res, err := g.wire("create_customer", domainErrors.ErrInvalidRequest, "create customer",
		func(api *client.API) (any, error) {
			return api.Customers.New(params)
		})
	if err != nil {
		return nil, err
	}

	customer := res.(*stripe.Customer)
	return &payment.Customer{
		ID:        customer.ID,
		Email:     customer.Email,
		Name:      customer.Name,
		Phone:     customer.Phone,
		CreatedAt: time.Unix(customer.Created, 0),
	}, nil
}

// intentFromStripe maps a processor response into the local model. Amount is
// reconstructed from minor units; currency is upper-cased on the way in.
func intentFromStripe(pi *stripe.PaymentIntent) *payment.Intent {
	intent := &payment.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       payment.IntentStatus(pi.Status),
		Amount:       payment.FromMinorUnits(pi.Amount),
		Currency:     strings.ToUpper(string(pi.Currency)),
		Description:  pi.Description,
		CreatedAt:    time.Unix(pi.Created, 0),
	}
	if pi.PaymentMethod != nil {
		intent.PaymentMethod = pi.PaymentMethod.ID
	}
	return intent
}

// mapRefundReason maps a free-form refund reason onto the processor's closed
// set, defaulting to requested_by_customer.
func mapRefundReason(reason string) stripe.RefundReason {
	switch strings.ToLower(reason) {
	case "duplicate":
		return stripe.RefundReasonDuplicate
	case "fraudulent":
		return stripe.RefundReasonFraudulent
	default:
		return stripe.RefundReasonRequestedByCustomer
	}
}
