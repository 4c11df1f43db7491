// Package client provides an HTTP client for the dancehall server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/olsonja88/ICS499-Bears/internal/chat"
)

// Client talks to the dancehall HTTP API.
type Client struct {
	baseURL    string
	credential string
	sessionID  string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. If baseURL is empty,
// the DANCEHALL_SERVER_URL env var is used, defaulting to localhost:8090.
// The credential, when non-empty, is sent as a bearer token. A fresh
// session id is generated per client.
func New(baseURL, credential string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("DANCEHALL_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("DANCEHALL_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    baseURL,
		credential: credential,
		sessionID:  uuid.NewString(),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	UserMessage string `json:"userMessage"`
	SessionID   string `json:"sessionId"`
}

// Change describes what happened to one statement of a mutation batch.
type Change struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// AskResult is the server's answer to one conversational turn.
type AskResult struct {
	Reply       string      `json:"reply"`
	SessionID   string      `json:"sessionId"`
	ChatHistory []chat.Turn `json:"chatHistory"`
	Changes     []Change    `json:"changes,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Ask sends one user message and returns the assistant's reply. The
// conversation history lives server-side, keyed by the client's session.
func (c *Client) Ask(ctx context.Context, message string) (AskResult, error) {
	payload, err := json.Marshal(askRequest{
		UserMessage: message,
		SessionID:   c.sessionID,
	})
	if err != nil {
		return AskResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/ask", bytes.NewReader(payload))
	if err != nil {
		return AskResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AskResult{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AskResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return AskResult{}, fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return AskResult{}, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var result AskResult
	if err := json.Unmarshal(body, &result); err != nil {
		return AskResult{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// ResetHistory clears the session's conversation on the server and
// returns the assistant's greeting.
func (c *Client) ResetHistory(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/ask/history?sessionId="+c.sessionID, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var body struct {
		Greeting string `json:"greeting"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.Greeting, nil
}

// Health checks that the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}
