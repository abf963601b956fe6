package payrails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client talks to the Payrails platform. Every operation performs its own
// credential exchange and carries a fresh idempotency key, so calls are
// stateless and safe to issue concurrently from independent sessions.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	breaker      *gobreaker.CircuitBreaker[json.RawMessage]
	logger       *zap.Logger
}

func NewClient(baseURL, clientID, clientSecret string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
			Name:        "payrails",
			MaxRequests: 3,
			Timeout:     30 * time.Second,
		}),
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AccessToken exchanges the client credentials for a short-lived bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/auth/token/%s", c.baseURL, c.clientID)
	headers := map[string]string{
		"Accept":    "application/json",
		"x-api-key": c.clientSecret,
	}

	raw, err := c.post(ctx, OpToken, url, headers, nil)
	if err != nil {
		return "", err
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return tok.AccessToken, nil
}

// ClientInit obtains a bearer token and requests the client init
// configuration for one checkout attempt. The response body is returned
// verbatim; the caller does not interpret it.
func (c *Client) ClientInit(ctx context.Context, payload InitPayload) (json.RawMessage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/merchant/client/init"
	return c.post(ctx, OpInit, url, c.authorizedHeaders(token), payload)
}

// Lookup submits buyer metadata against an existing workflow execution,
// enriching risk signals before authorization. Not a financial operation.
func (c *Client) Lookup(ctx context.Context, workflowCode, executionID string, payload LookupPayload) (json.RawMessage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/merchant/workflows/%s/executions/%s/lookup", c.baseURL, workflowCode, executionID)
	return c.post(ctx, OpLookup, url, c.authorizedHeaders(token), payload)
}

// authorizedHeaders builds the header set for authenticated calls. The
// idempotency key is minted here, so a retried operation never reuses one.
func (c *Client) authorizedHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization":     "Bearer " + token,
		"Accept":            "application/json",
		"Content-Type":      "application/json",
		"x-idempotency-key": uuid.NewString(),
	}
}

func (c *Client) post(ctx context.Context, op, url string, headers map[string]string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.breaker.Execute(func() (json.RawMessage, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s request: %w", op, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s response: %w", op, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Warn("payrails call failed",
				zap.String("op", op),
				zap.Int("status", resp.StatusCode))
			return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
		}

		return raw, nil
	})
}
