package controller

import (
	"net/http"

	domainErrors "github.com/bookstay/payments/internal/domain/errors"
	"github.com/bookstay/payments/internal/gateway"
	"github.com/go-chi/chi/v5"
)

// AccountController exposes connected account onboarding over HTTP.
type AccountController struct {
	gw gateway.PaymentGateway
}

func NewAccountController(gw gateway.PaymentGateway) *AccountController {
	return &AccountController{gw: gw}
}

// CreateAccount handles POST /api/v1/connect/accounts.
func (c *AccountController) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateConnectAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accountID, err := c.gw.CreateConnectAccount(r.Context(), req.Email, req.AccountType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ConnectAccountResponse{AccountID: accountID})
}

// CreateLink handles POST /api/v1/connect/accounts/{id}/links.
func (c *AccountController) CreateLink(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, domainErrors.NewValidationError("id", "required"))
		return
	}

	var req CreateAccountLinkRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	url, err := c.gw.CreateAccountLink(r.Context(), accountID, req.RefreshURL, req.ReturnURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountLinkResponse{URL: url})
}
