package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eduardojanicas/payrails-checkout-elements/internal/payrails"
)

type LookupHandler struct {
	api     PayrailsAPI
	timeout time.Duration
	logger  *zap.Logger
}

func NewLookupHandler(api PayrailsAPI, timeout time.Duration, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{
		api:     api,
		timeout: timeout,
		logger:  logger,
	}
}

type LookupCustomerDTO struct {
	Email string `json:"email"`
}

type LookupAmountDTO struct {
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
}

type LookupOrderDTO struct {
	BillingAddress *payrails.BillingAddress `json:"billingAddress"`
}

type LookupRequestDTO struct {
	WorkflowCode string             `json:"workflowCode"`
	ExecutionID  string             `json:"executionId"`
	Customer     *LookupCustomerDTO `json:"customer"`
	Amount       *LookupAmountDTO   `json:"amount"`
	Order        *LookupOrderDTO    `json:"order"`
}

// validate returns the name of the first missing required field, or "".
// Every field is required here: the lookup addresses a concrete execution
// and must carry complete buyer metadata.
func (req *LookupRequestDTO) validate() string {
	switch {
	case req.WorkflowCode == "":
		return "workflowCode"
	case req.ExecutionID == "":
		return "executionId"
	case req.Customer == nil || req.Customer.Email == "":
		return "customer.email"
	case req.Amount == nil || req.Amount.Value == nil:
		return "amount.value"
	case req.Amount.Currency == "":
		return "amount.currency"
	case req.Order == nil || req.Order.BillingAddress == nil:
		return "order.billingAddress"
	}
	return ""
}

// POST /api/lookup
//
// Enriches an in-progress workflow execution with buyer metadata before
// authorization. Triggered from the payment button's pre-click hook; this is
// a risk-signal call, not a financial operation.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LookupRequestDTO
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", decodeErrorMessage(err), err.Error())
		return
	}

	if field := req.validate(); field != "" {
		respondError(w, http.StatusBadRequest, "missing_field", field+" required", "")
		return
	}

	payload := payrails.LookupPayload{
		Amount: payrails.Amount{
			Value:    strconv.FormatFloat(*req.Amount.Value, 'f', -1, 64),
			Currency: req.Amount.Currency,
		},
		Meta: payrails.LookupMeta{
			Customer: payrails.LookupCustomer{Email: req.Customer.Email},
			Order:    payrails.LookupOrder{BillingAddress: *req.Order.BillingAddress},
		},
	}

	raw, err := h.api.Lookup(ctx, req.WorkflowCode, req.ExecutionID, payload)
	if err != nil {
		respondProxyError(w, h.logger, err, "Lookup failed")
		return
	}

	respondRaw(w, http.StatusOK, raw)
}
