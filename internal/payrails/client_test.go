package payrails

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePlatform records provider calls so tests can assert on headers,
// payloads, and call counts.
type fakePlatform struct {
	mu              sync.Mutex
	tokenCalls      int
	initCalls       int
	lookupCalls     int
	idempotencyKeys []string
	lastInitBody    InitPayload
	lastLookupPath  string

	tokenStatus  int
	initStatus   int
	lookupStatus int
}

func (f *fakePlatform) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		f.mu.Unlock()

		if r.Header.Get("x-api-key") == "" {
			t.Error("token request missing x-api-key header")
		}
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			w.Write([]byte(`{"message":"invalid credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	})

	mux.HandleFunc("/merchant/client/init", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			t.Errorf("unexpected Authorization header: %s", r.Header.Get("Authorization"))
		}

		f.mu.Lock()
		f.initCalls++
		f.idempotencyKeys = append(f.idempotencyKeys, r.Header.Get("x-idempotency-key"))
		json.NewDecoder(r.Body).Decode(&f.lastInitBody)
		f.mu.Unlock()

		if f.initStatus != 0 {
			w.WriteHeader(f.initStatus)
			w.Write([]byte(`{"message":"init rejected"}`))
			return
		}
		w.Write([]byte(`{"executionId":"exec-1","sdkConfig":{}}`))
	})

	mux.HandleFunc("/merchant/workflows/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lookupCalls++
		f.idempotencyKeys = append(f.idempotencyKeys, r.Header.Get("x-idempotency-key"))
		f.lastLookupPath = r.URL.Path
		f.mu.Unlock()

		if f.lookupStatus != 0 {
			w.WriteHeader(f.lookupStatus)
			w.Write([]byte(`{"message":"lookup rejected"}`))
			return
		}
		w.Write([]byte(`{"status":"enriched"}`))
	})

	return mux
}

func newTestClient(t *testing.T, platform *fakePlatform) *Client {
	srv := httptest.NewServer(platform.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "client-1", "secret-1", zap.NewNop())
}

func TestClientInit_ForwardsPayloadAndReturnsBody(t *testing.T) {
	platform := &fakePlatform{}
	client := newTestClient(t, platform)

	raw, err := client.ClientInit(context.Background(), InitPayload{
		Type:              "dropIn",
		Amount:            Amount{Value: "9995", Currency: "USD"},
		WorkflowCode:      "payment-acceptance",
		MerchantReference: "order-42",
		HolderReference:   "holder-1",
		WorkspaceID:       "ws-1",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"executionId":"exec-1","sdkConfig":{}}`, string(raw))

	platform.mu.Lock()
	defer platform.mu.Unlock()
	assert.Equal(t, 1, platform.tokenCalls)
	assert.Equal(t, 1, platform.initCalls)
	assert.Equal(t, "9995", platform.lastInitBody.Amount.Value)
	assert.Equal(t, "USD", platform.lastInitBody.Amount.Currency)
	assert.Equal(t, "order-42", platform.lastInitBody.MerchantReference)
}

func TestClientInit_FreshIdempotencyKeyPerCall(t *testing.T) {
	platform := &fakePlatform{}
	client := newTestClient(t, platform)

	for i := 0; i < 3; i++ {
		_, err := client.ClientInit(context.Background(), InitPayload{Type: "dropIn"})
		require.NoError(t, err)
	}

	platform.mu.Lock()
	defer platform.mu.Unlock()
	require.Len(t, platform.idempotencyKeys, 3)
	seen := map[string]bool{}
	for _, key := range platform.idempotencyKeys {
		assert.NotEmpty(t, key)
		assert.False(t, seen[key], "idempotency key %q reused", key)
		seen[key] = true
	}
}

func TestClientInit_TokenFailureStopsSequence(t *testing.T) {
	platform := &fakePlatform{tokenStatus: http.StatusUnauthorized}
	client := newTestClient(t, platform)

	_, err := client.ClientInit(context.Background(), InitPayload{Type: "dropIn"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, OpToken, upstream.Op)
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "invalid credentials")

	platform.mu.Lock()
	defer platform.mu.Unlock()
	assert.Equal(t, 0, platform.initCalls, "init must not be attempted after token failure")
}

func TestClientInit_UpstreamFailurePreservesBody(t *testing.T) {
	platform := &fakePlatform{initStatus: http.StatusBadRequest}
	client := newTestClient(t, platform)

	_, err := client.ClientInit(context.Background(), InitPayload{Type: "dropIn"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, OpInit, upstream.Op)
	assert.Contains(t, upstream.Body, "init rejected")
}

func TestLookup_AddressesWorkflowAndExecution(t *testing.T) {
	platform := &fakePlatform{}
	client := newTestClient(t, platform)

	payload := LookupPayload{
		Amount: Amount{Value: "9995", Currency: "USD"},
		Meta: LookupMeta{
			Customer: LookupCustomer{Email: "a@b.com"},
			Order: LookupOrder{BillingAddress: BillingAddress{
				Street: "1 Main St", City: "Lisbon", State: "LX", PostalCode: "1000",
			}},
		},
	}

	raw, err := client.Lookup(context.Background(), "payment-acceptance", "exec-1", payload)

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"enriched"}`, string(raw))

	platform.mu.Lock()
	defer platform.mu.Unlock()
	assert.Equal(t, "/merchant/workflows/payment-acceptance/executions/exec-1/lookup", platform.lastLookupPath)
	assert.Equal(t, 1, platform.tokenCalls, "lookup performs its own credential exchange")
}

func TestLookup_TokenFailureStopsSequence(t *testing.T) {
	platform := &fakePlatform{tokenStatus: http.StatusForbidden}
	client := newTestClient(t, platform)

	_, err := client.Lookup(context.Background(), "wf1", "exec-1", LookupPayload{})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, OpToken, upstream.Op)

	platform.mu.Lock()
	defer platform.mu.Unlock()
	assert.Equal(t, 0, platform.lookupCalls)
}

func TestUpstreamError_Message(t *testing.T) {
	err := &UpstreamError{Op: OpInit, StatusCode: 502, Body: "bad gateway"}
	assert.Equal(t, "payrails init request failed: status 502", err.Error())
}
