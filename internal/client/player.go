// Package client holds HTTP clients for the collaborating microservices:
// the player service (token authentication) and the currency service
// (reward payout).
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Collaborator errors shared by both clients.
var (
	// ErrUnauthorized indicates the bearer token does not authenticate a player.
	ErrUnauthorized = errors.New("token could not be used to authenticate the player")

	// ErrRequestFailed indicates the downstream service could not be reached.
	ErrRequestFailed = errors.New("downstream service unreachable")

	// ErrInternal indicates an unexpected downstream response.
	ErrInternal = errors.New("unexpected downstream response")
)

// PlayerClient authenticates bearer tokens against the player service.
type PlayerClient struct {
	baseURL string
	http    *http.Client
}

// NewPlayerClient creates a player service client.
func NewPlayerClient(baseURL string, timeout time.Duration) *PlayerClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &PlayerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// authnResponse carries the id field of the player service's authn body.
type authnResponse struct {
	ID uuid.UUID `json:"id"`
}

// Authenticate validates a player token with GET <player-svc>/authn and
// returns the authenticated player's id.
// Returns ErrRequestFailed when the player service cannot be reached and
// ErrUnauthorized when the token does not authenticate a player.
func (c *PlayerClient) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/authn", nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to build authn request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return uuid.Nil, ErrUnauthorized
	}

	var body authnResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed authn body: %v", ErrInternal, err)
	}
	if body.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: authn body missing player id", ErrInternal)
	}

	return body.ID, nil
}
