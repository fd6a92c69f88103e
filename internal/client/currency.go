package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CurrencyClient credits bonus rewards through the currency service.
type CurrencyClient struct {
	baseURL string
	http    *http.Client
}

// NewCurrencyClient creates a currency service client.
func NewCurrencyClient(baseURL string, timeout time.Duration) *CurrencyClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &CurrencyClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// payoutRequest is the body of POST <currency-svc>/transaction.
type payoutRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// Payout credits amount to the player authenticated by token, with a reason
// string recorded by the currency service. The player's bearer token is passed
// through so the currency service authorizes the credit itself.
// Returns ErrRequestFailed when the currency service cannot be reached,
// ErrUnauthorized on a 401, and ErrInternal for any other non-200 response.
func (c *CurrencyClient) Payout(ctx context.Context, token string, amount int, reason string) error {
	body, err := json.Marshal(payoutRequest{Amount: amount, Reason: reason})
	if err != nil {
		return fmt.Errorf("failed to encode payout body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build payout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusConflict:
		// A point increase can never conflict; treat as a currency-service bug.
		return fmt.Errorf("%w: conflict on a point increase", ErrInternal)
	default:
		return fmt.Errorf("%w: status %d", ErrInternal, resp.StatusCode)
	}
}
