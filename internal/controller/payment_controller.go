package controller

import (
	"net/http"

	domainErrors "github.com/bookstay/payments/internal/domain/errors"
	"github.com/bookstay/payments/internal/domain/payment"
	"github.com/bookstay/payments/internal/gateway"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentController exposes the payment intent lifecycle over HTTP.
type PaymentController struct {
	gw gateway.PaymentGateway
	// feePercent is the platform cut applied to split payments when the
	// caller does not supply an explicit application fee.
	feePercent decimal.Decimal
}

func NewPaymentController(gw gateway.PaymentGateway, feePercent float64) *PaymentController {
	return &PaymentController{
		gw:         gw,
		feePercent: decimal.NewFromFloat(feePercent),
	}
}

// CreateIntent handles POST /api/v1/payment-intents.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		writeError(w, domainErrors.NewValidationError("booking_id", "must be a valid UUID"))
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	intent, err := c.gw.CreatePaymentIntent(r.Context(), payment.CreateIntentRequest{
		BookingID:     bookingID,
		Amount:        amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromIntent(intent))
}

// CreateSplitIntent handles POST /api/v1/payment-intents/split. When the
// request omits application_fee_amount, the platform fee percentage is
// applied to the amount, truncated to cents.
func (c *PaymentController) CreateSplitIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateSplitIntentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		writeError(w, domainErrors.NewValidationError("booking_id", "must be a valid UUID"))
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	var fee decimal.Decimal
	if req.ApplicationFeeAmount != nil {
		fee, err = parseAmount("application_fee_amount", *req.ApplicationFeeAmount)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		fee = amount.Mul(c.feePercent).Div(decimal.NewFromInt(100)).Truncate(2)
	}

	intent, err := c.gw.CreatePaymentIntentWithTransfer(r.Context(), payment.SplitIntentRequest{
		BookingID:            bookingID,
		Amount:               amount,
		Currency:             req.Currency,
		PaymentMethod:        req.PaymentMethod,
		Description:          req.Description,
		DestinationAccountID: req.DestinationAccountID,
		ApplicationFee:       fee,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromIntent(intent))
}

// Confirm handles POST /api/v1/payment-intents/{id}/confirm.
func (c *PaymentController) Confirm(w http.ResponseWriter, r *http.Request) {
	intentID := chi.URLParam(r, "id")
	if intentID == "" {
		writeError(w, domainErrors.NewValidationError("id", "required"))
		return
	}

	var req ConfirmPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := c.gw.ConfirmPayment(r.Context(), intentID, req.PaymentMethodID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromResult(result))
}

// Refund handles POST /api/v1/payment-intents/{id}/refund.
func (c *PaymentController) Refund(w http.ResponseWriter, r *http.Request) {
	intentID := chi.URLParam(r, "id")
	if intentID == "" {
		writeError(w, domainErrors.NewValidationError("id", "required"))
		return
	}

	var req RefundPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var amount *decimal.Decimal
	if req.Amount != nil {
		parsed, err := parseAmount("amount", *req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		amount = &parsed
	}

	refund, err := c.gw.RefundPayment(r.Context(), intentID, amount, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromRefund(refund))
}

// GetStatus handles GET /api/v1/payment-intents/{id}/status.
func (c *PaymentController) GetStatus(w http.ResponseWriter, r *http.Request) {
	intentID := chi.URLParam(r, "id")
	if intentID == "" {
		writeError(w, domainErrors.NewValidationError("id", "required"))
		return
	}

	info, err := c.gw.GetPaymentStatus(r.Context(), intentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromStatusInfo(info))
}

// CreateCustomer handles POST /api/v1/customers.
func (c *PaymentController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	customer, err := c.gw.CreateCustomer(r.Context(), req.Email, req.Name, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromCustomer(customer))
}
