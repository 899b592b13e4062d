package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adiretotes/store-api/pkg/models"
)

const defaultBaseURL = "https://api.paystack.co"

// Client talks to the Paystack REST API. Amounts are always in kobo.
type Client struct {
	secret  string
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at a different host; tests use this
// with an httptest server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(secret string, opts ...Option) *Client {
	c := &Client{
		secret:  secret,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is Paystack's response wrapper. Status false means the call
// itself was rejected, independent of the transaction status inside.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize starts a hosted transaction and returns the redirect URL
// the buyer completes payment on.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secret)
	httpReq.Header.Set("Content-Type", "application/json")

	env, err := c.do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("initialize %s: %w", req.Reference, err)
	}

	var data InitializeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("initialize %s: decode response: %w", req.Reference, err)
	}
	return &data, nil
}

// Verify re-queries the transaction by reference. This response, not
// any inbound notification, is the source of truth for status and
// amount during reconciliation.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secret)

	env, err := c.do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", reference, err)
	}

	var data VerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("verify %s: decode response: %w", reference, err)
	}
	data.Raw = env.Data
	return &data, nil
}

func (c *Client) do(req *http.Request) (*envelope, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", models.ErrGateway, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 || !env.Status {
		return nil, fmt.Errorf("%w: %s", models.ErrGateway, env.Message)
	}
	return &env, nil
}
