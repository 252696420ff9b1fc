package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketplace/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrDeclined means the provider refused the charge
	ErrDeclined = errors.New("payment declined")
	// ErrProvider means the provider could not be reached or answered unexpectedly
	ErrProvider = errors.New("payment provider error")
)

// ChargeRequest describes a single card charge
type ChargeRequest struct {
	Amount         domain.Money // Amount to charge
	Currency       string       // ISO currency code
	Source         string       // Card token issued by the provider's client SDK
	Description    string       // Shown on the provider dashboard
	IdempotencyKey string       // Order reference, makes retries safe on the provider side
}

// Charge is a successful provider charge
type Charge struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Client creates charges on a hosted payment API
type Client interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// HTTPClient talks JSON to a hosted payment API
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type chargeBody struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

type chargeResponse struct {
	Charge
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Charge posts to /v1/charges and maps the outcome onto ErrDeclined or ErrProvider
func (c *HTTPClient) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body, err := json.Marshal(chargeBody{
		Amount:      req.Amount.Cents(),
		Currency:    req.Currency,
		Source:      req.Source,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProvider, err)
	}
	var out chargeResponse
	_ = json.Unmarshal(raw, &out) // Non-JSON bodies are reported through the status code

	switch {
	case resp.StatusCode == http.StatusPaymentRequired || out.Status == "failed":
		msg := "card declined"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrDeclined, msg)
	case resp.StatusCode >= 200 && resp.StatusCode < 300 && out.Status == "succeeded":
		return &out.Charge, nil
	default:
		return nil, fmt.Errorf("%w: unexpected response %d status=%q", ErrProvider, resp.StatusCode, out.Status)
	}
}

// Noop accepts every charge, used when no payment API is configured
type Noop struct{}

func (Noop) Charge(_ context.Context, req ChargeRequest) (*Charge, error) {
	return &Charge{ID: "noop_" + uuid.NewString(), Status: "succeeded", Amount: req.Amount.Cents()}, nil
}
