package checkout

import (
	"context"
	"encoding/json"
)

// MountTarget is an opaque handle identifying where a widget should render.
// The orchestrator never inspects it; it is passed straight through to the
// WidgetHost implementation, which knows what its targets look like.
type MountTarget interface{}

// ReturnInfo holds the provider-side redirect destinations for each
// authorization outcome category.
type ReturnInfo struct {
	Success string
	Cancel  string
	Error   string
	Pending string
}

// ClientConfig configures construction of a payment client from an init
// configuration. OnExecutionCreated fires when the provider reports the
// workflow execution for this attempt; it may fire more than once.
type ClientConfig struct {
	OnExecutionCreated func(executionID string)
	ReturnInfo         ReturnInfo
}

type CardFormConfig struct {
	ShowCardHolderName bool
}

// AuthorizationResult is the structured outcome notification for one pay
// action. Reason is only meaningful when Authorized is false and may be
// empty, in which case a default decline reason applies.
type AuthorizationResult struct {
	Authorized bool
	Reason     string
}

// PaymentButtonConfig wires the pay-action widget. BeforeAuthorize is
// awaited before the host proceeds to authorize; its error is advisory and
// must not stop the authorization attempt. OnResult fires once per click
// with the authorization outcome.
type PaymentButtonConfig struct {
	Label           string
	BeforeAuthorize func(ctx context.Context) error
	OnResult        func(result AuthorizationResult)
}

// PaymentClient is a constructed provider client able to mount widgets.
type PaymentClient interface {
	MountCardForm(target MountTarget, cfg CardFormConfig) error
	MountPaymentButton(target MountTarget, cfg PaymentButtonConfig) error
}

// WidgetHost abstracts the provider's client SDK: it consumes the opaque
// init configuration and produces a PaymentClient.
type WidgetHost interface {
	Init(config json.RawMessage, cfg ClientConfig) (PaymentClient, error)
}

// Navigator routes the buyer to a terminal outcome view. The destination
// carries the merchant reference so the outcome page can correlate back to
// the checkout attempt.
type Navigator interface {
	Navigate(url string)
}

// CustomerSnapshot is a point-in-time copy of the buyer-entered form data,
// read lazily at the moment of the pre-authorization hook.
type CustomerSnapshot struct {
	Email   string
	Address string
	City    string
	Region  string
	Postal  string
}
