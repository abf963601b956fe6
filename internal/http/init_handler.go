package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eduardojanicas/payrails-checkout-elements/internal/payrails"
)

// PayrailsAPI is the slice of the Payrails client the handlers use.
type PayrailsAPI interface {
	ClientInit(ctx context.Context, payload payrails.InitPayload) (json.RawMessage, error)
	Lookup(ctx context.Context, workflowCode, executionID string, payload payrails.LookupPayload) (json.RawMessage, error)
}

// Fallbacks applied when the caller omits contextual identifiers.
const (
	defaultWorkflowCode      = "payment-acceptance"
	defaultMerchantReference = "order-123"
	defaultHolderReference   = "holder-123"
	missingWorkspaceID       = "missing-workspace-id"
)

type InitHandler struct {
	api         PayrailsAPI
	workspaceID string
	timeout     time.Duration
	logger      *zap.Logger
}

func NewInitHandler(api PayrailsAPI, workspaceID string, timeout time.Duration, logger *zap.Logger) *InitHandler {
	return &InitHandler{
		api:         api,
		workspaceID: workspaceID,
		timeout:     timeout,
		logger:      logger,
	}
}

// All fields optional; pointer types distinguish "absent" from zero values.
type InitRequestDTO struct {
	Amount            *float64 `json:"amount"`
	Currency          *string  `json:"currency"`
	WorkflowCode      *string  `json:"workflowCode"`
	MerchantReference *string  `json:"merchantReference"`
	HolderReference   *string  `json:"holderReference"`
	WorkspaceID       *string  `json:"workspaceId"`
}

// POST /api/init
//
// Obtains an OAuth token with the server-held credentials, calls the Payrails
// client init endpoint, and returns the init configuration verbatim to the
// browser (which hands it to the web SDK).
func (h *InitHandler) Init(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req InitRequestDTO
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", decodeErrorMessage(err), err.Error())
		return
	}

	payload := payrails.InitPayload{
		Type: "dropIn",
		Amount: payrails.Amount{
			Value:    formatMinorUnits(req.Amount),
			Currency: stringOr(req.Currency, ""),
		},
		WorkflowCode:      stringOr(req.WorkflowCode, defaultWorkflowCode),
		MerchantReference: stringOr(req.MerchantReference, defaultMerchantReference),
		HolderReference:   stringOr(req.HolderReference, defaultHolderReference),
		WorkspaceID:       h.resolveWorkspaceID(req.WorkspaceID),
	}

	raw, err := h.api.ClientInit(ctx, payload)
	if err != nil {
		respondProxyError(w, h.logger, err, "Init request failed")
		return
	}

	respondRaw(w, http.StatusOK, raw)
}

func (h *InitHandler) resolveWorkspaceID(override *string) string {
	if override != nil && *override != "" {
		return *override
	}
	if h.workspaceID != "" {
		return h.workspaceID
	}
	return missingWorkspaceID
}

// respondProxyError maps client failures onto the error envelope: upstream
// non-success → 502 with the raw body as detail, anything else → 500.
func respondProxyError(w http.ResponseWriter, logger *zap.Logger, err error, opMessage string) {
	var upstream *payrails.UpstreamError
	if errors.As(err, &upstream) {
		message := opMessage
		if upstream.Op == payrails.OpToken {
			message = "Failed to fetch access token"
		}
		logger.Error("upstream failure",
			zap.String("op", upstream.Op),
			zap.Int("status", upstream.StatusCode))
		respondError(w, http.StatusBadGateway, "upstream_error", message, upstream.Body)
		return
	}

	logger.Error("proxy failure", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "server_error", "Server error", err.Error())
}

// formatMinorUnits renders the amount as a string before transmission,
// e.g. 9995 -> "9995". Whether minor units carry decimals follows the
// merchant account's conventions.
func formatMinorUnits(amount *float64) string {
	if amount == nil {
		return "0"
	}
	return strconv.FormatFloat(*amount, 'f', -1, 64)
}

func stringOr(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}
