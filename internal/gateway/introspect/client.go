// Package introspect is the gateway's client for the auth service's token
// introspection endpoint.
package introspect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hediske/fitness-microservices-app/internal/platform/requestid"
)

type Result struct {
	Active bool   `json:"active"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type Client struct {
	endpoint string
	http     *http.Client
}

// New builds a client against the auth service base URL, e.g.
// "http://auth-service:8081". timeout bounds the whole call; the gateway
// blocks on introspection for every protected request.
func New(authBaseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		endpoint: authBaseURL + "/api/auth/introspect",
		http:     &http.Client{Timeout: timeout},
	}
}

// Introspect posts the raw token and decodes the verdict. Any transport or
// decode failure is an error; the caller decides what that means (the auth
// filter treats it as not-authenticated).
func (c *Client) Introspect(ctx context.Context, token string) (Result, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return Result{}, fmt.Errorf("introspect: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("introspect: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("introspect: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("introspect: unexpected status %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("introspect: decode response: %w", err)
	}
	return res, nil
}
