package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of the orchestrator for one checkout session.
// idle -> loading -> ready, with loading -> error on any failure. Both ready
// and error are stable for the session; there is no automatic retry.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodPayPal PaymentMethod = "paypal"
)

// InitService requests an init configuration from the backend proxy.
type InitService interface {
	ClientInit(ctx context.Context, req InitRequest) (json.RawMessage, error)
}

// EnrichmentService submits buyer metadata against an execution before
// authorization, via the backend proxy.
type EnrichmentService interface {
	Lookup(ctx context.Context, req LookupRequest) (json.RawMessage, error)
}

// InitRequest is the body sent to the init proxy. Amount is numeric here;
// the proxy renders it as a minor-units string for the provider.
type InitRequest struct {
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	WorkflowCode      string  `json:"workflowCode"`
	MerchantReference string  `json:"merchantReference"`
	HolderReference   string  `json:"holderReference"`
	WorkspaceID       string  `json:"workspaceId,omitempty"`
}

type LookupAmount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type LookupBillingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// LookupRequest is the body sent to the lookup proxy.
type LookupRequest struct {
	WorkflowCode string `json:"workflowCode"`
	ExecutionID  string `json:"executionId"`
	Customer     struct {
		Email string `json:"email"`
	} `json:"customer"`
	Amount LookupAmount `json:"amount"`
	Order  struct {
		BillingAddress LookupBillingAddress `json:"billingAddress"`
	} `json:"order"`
}

// Options configure one checkout session.
type Options struct {
	Amount          float64 // minor units, e.g. 9995 == $99.95
	Currency        string  // ISO 4217 code
	WorkflowCode    string  // defaults to payment-acceptance
	WorkspaceID     string  // optional override, normally handled server-side
	HolderReference string  // merchant-side customer identifier
	Enabled         bool    // defer initialization until true
	PaymentMethod   PaymentMethod

	// CustomerInfo returns the latest form snapshot, or nil when the form
	// has no usable data yet. Called only at the pre-authorization moment.
	CustomerInfo func() *CustomerSnapshot

	// Mount targets. PayButtonTarget is required for initialization to run;
	// CardFormTarget is used only for the card method.
	CardFormTarget  MountTarget
	PayButtonTarget MountTarget
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Init   InitService
	Enrich EnrichmentService
	Host   WidgetHost
	Nav    Navigator
	Logger *zap.Logger
}

// Orchestrator owns the readiness state machine for a single checkout
// session: it fetches the init configuration, drives widget construction and
// mounting, wires the pre-authorization enrichment hook, and routes
// authorization outcomes. It is the single writer of its own state.
type Orchestrator struct {
	opts Options
	deps Deps

	mu          sync.Mutex
	state       State
	errMsg      string
	merchantRef string
	executionID string
	initialized bool
	cancelled   bool
}

func New(opts Options, deps Deps) *Orchestrator {
	if opts.WorkflowCode == "" {
		opts.WorkflowCode = "payment-acceptance"
	}
	if opts.HolderReference == "" {
		opts.HolderReference = "holder-abc"
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{
		opts:  opts,
		deps:  deps,
		state: StateIdle,
		// Generated once per session and reused in both the init call and
		// outcome navigation, so the outcome page can correlate the attempt.
		merchantRef: fmt.Sprintf("order-%s", uuid.NewString()[:8]),
	}
}

// Start runs the initialization sequence. It is safe to call repeatedly:
// the sequence runs at most once per session, and re-fires of the trigger
// condition are no-ops. Failures land in StateError with a human-readable
// message; nothing is thrown back to the caller.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if !o.opts.Enabled || o.opts.PayButtonTarget == nil || o.cancelled || o.state != StateIdle {
		o.mu.Unlock()
		return
	}
	o.state = StateLoading
	o.errMsg = ""
	o.mu.Unlock()

	raw, err := o.deps.Init.ClientInit(ctx, InitRequest{
		Amount:            o.opts.Amount,
		Currency:          o.opts.Currency,
		WorkflowCode:      o.opts.WorkflowCode,
		MerchantReference: o.merchantRef,
		HolderReference:   o.opts.HolderReference,
		WorkspaceID:       o.opts.WorkspaceID,
	})
	if err != nil {
		o.deps.Logger.Error("init request failed", zap.Error(err))
		o.fail("failed to load payment configuration")
		return
	}

	client, err := o.deps.Host.Init(unwrapInitConfig(raw), ClientConfig{
		OnExecutionCreated: o.captureExecution,
		ReturnInfo: ReturnInfo{
			Success: "payrails.com/success",
			Cancel:  "payrails.com/failure",
			Error:   "payrails.com/error",
			Pending: "payrails.com/pending",
		},
	})
	if err != nil {
		o.deps.Logger.Error("payment client construction failed", zap.Error(err))
		o.fail("failed to initialize payment client")
		return
	}

	if o.opts.PaymentMethod == MethodCard && o.opts.CardFormTarget != nil {
		if err := client.MountCardForm(o.opts.CardFormTarget, CardFormConfig{ShowCardHolderName: true}); err != nil {
			o.deps.Logger.Error("card form mount failed", zap.Error(err))
			o.fail("failed to mount card form")
			return
		}
	}

	err = client.MountPaymentButton(o.opts.PayButtonTarget, PaymentButtonConfig{
		Label:           "Pay",
		BeforeAuthorize: o.enrichBeforeAuthorize,
		OnResult:        o.routeOutcome,
	})
	if err != nil {
		o.deps.Logger.Error("payment button mount failed", zap.Error(err))
		o.fail("failed to mount payment button")
		return
	}

	o.mu.Lock()
	if !o.cancelled {
		o.initialized = true
		o.state = StateReady
	}
	o.mu.Unlock()
}

// Teardown marks the session as gone. A sequence still in flight will
// complete its calls but commit no state transition, so a slow response
// cannot corrupt a newer session's state.
func (o *Orchestrator) Teardown() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the failure message recorded by the loading sequence, or "".
func (o *Orchestrator) Err() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

func (o *Orchestrator) MerchantReference() string {
	return o.merchantRef
}

// ExecutionID returns the captured workflow execution id, or "" when the
// provider has not reported one yet.
func (o *Orchestrator) ExecutionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.executionID
}

// CanPay reports whether the pay action should be treated as actionable.
// Form validity is the consumer's concern; the orchestrator contributes
// readiness and method selection.
func (o *Orchestrator) CanPay(formValid bool) bool {
	return o.State() == StateReady && formValid && o.opts.PaymentMethod != ""
}

func (o *Orchestrator) fail(message string) {
	o.mu.Lock()
	if !o.cancelled {
		o.state = StateError
		o.errMsg = message
	}
	o.mu.Unlock()
}

// captureExecution records the execution id, first write wins. The provider
// may notify more than once; later notifications are ignored.
func (o *Orchestrator) captureExecution(executionID string) {
	o.mu.Lock()
	if o.executionID == "" && executionID != "" {
		o.executionID = executionID
	}
	o.mu.Unlock()
}

// enrichBeforeAuthorize is the pre-click hook. It reads the latest form
// snapshot through the accessor, never a cached copy. Enrichment is
// best-effort: missing data means trivial success, and a failed lookup is
// logged but never blocks the authorization that follows.
func (o *Orchestrator) enrichBeforeAuthorize(ctx context.Context) error {
	var info *CustomerSnapshot
	if o.opts.CustomerInfo != nil {
		info = o.opts.CustomerInfo()
	}
	executionID := o.ExecutionID()
	if info == nil || executionID == "" {
		return nil
	}

	req := LookupRequest{
		WorkflowCode: o.opts.WorkflowCode,
		ExecutionID:  executionID,
		Amount:       LookupAmount{Value: o.opts.Amount, Currency: o.opts.Currency},
	}
	req.Customer.Email = info.Email
	req.Order.BillingAddress = LookupBillingAddress{
		Street:     info.Address,
		City:       info.City,
		State:      info.Region,
		PostalCode: info.Postal,
	}

	if _, err := o.deps.Enrich.Lookup(ctx, req); err != nil {
		o.deps.Logger.Warn("enrichment lookup failed, continuing to authorization",
			zap.String("execution_id", executionID),
			zap.Error(err))
	}
	return nil
}

func (o *Orchestrator) routeOutcome(result AuthorizationResult) {
	if result.Authorized {
		o.deps.Nav.Navigate(successURL(o.merchantRef))
		return
	}
	o.deps.Nav.Navigate(failureURL(o.merchantRef, result.Reason))
}

// unwrapInitConfig unwraps a proxy response that nests the provider config
// under a top-level "res" key; otherwise the body is the config itself.
func unwrapInitConfig(raw json.RawMessage) json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if res, ok := envelope["res"]; ok {
			return res
		}
	}
	return raw
}
