package adserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
)

// Client talks to the upstream ad decisioning service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an ad server client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// decisionRequest is the wire shape of an ad decision request.
type decisionRequest struct {
	Placement string                  `json:"placement"`
	Context   domain.TargetingContext `json:"context,omitempty"`
	SessionID string                  `json:"session_id,omitempty"`
}

// permissionsResponse is the wire shape of the permission check.
type permissionsResponse struct {
	Granted []string `json:"granted"`
}

// FetchAd requests an ad decision for a placement. The targeting context
// is passed through unmodified.
func (c *Client) FetchAd(ctx context.Context, placement domain.Placement, tc domain.TargetingContext, sessionID string) (*domain.Ad, error) {
	body, err := json.Marshal(decisionRequest{
		Placement: string(placement),
		Context:   tc,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal decision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/decision", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ad decision call: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("no fill for placement %s", placement)
	case resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("ad server returned %d", resp.StatusCode)
	}

	var ad domain.Ad
	if err := json.NewDecoder(resp.Body).Decode(&ad); err != nil {
		return nil, fmt.Errorf("decode ad: %w", err)
	}
	if ad.ID == "" {
		return nil, fmt.Errorf("ad server returned ad without id")
	}
	return &ad, nil
}

// CheckPermissions verifies the API key and returns the granted
// permission set.
func (c *Client) CheckPermissions(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/permissions", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("permission check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("permission check returned %d", resp.StatusCode)
	}

	var pr permissionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return pr.Granted, nil
}
