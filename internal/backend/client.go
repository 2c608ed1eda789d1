// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend implements the client for the conversational backend.
//
// The backend is a plain request/response service: one user message in, one
// assistant reply out. There is no streaming and no retry in this client;
// retry, if wanted, is a caller policy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the conversational backend API.
const (
	// DefaultTimeout is the default timeout for a chat request.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 4 * 1024 * 1024 // 4MB

	// requestsPerSecond bounds how fast a single widget instance can hit
	// the backend; bursts cover quick follow-up questions.
	requestsPerSecond = 1
	requestBurst      = 3
)

// ErrUnavailable indicates the conversational backend could not be reached.
var ErrUnavailable = errors.New("conversational backend unavailable")

// ServiceError represents an error reported by the backend itself.
type ServiceError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// sharedHTTPClient pools connections for all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// BACKEND CLIENT
// =============================================================================

// Client talks to the conversational backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a backend client for the given service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	Response string `json:"response"`
	Message  string `json:"message,omitempty"` // error detail on failures
}

// Send submits a user message under the given session identity and returns
// the assistant reply text. The session id is whatever the caller captured
// at request issuance; this client does not track sessions.
func (c *Client) Send(ctx context.Context, message, sessionID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var decoded chatResponse
	if resp.StatusCode != http.StatusOK {
		// Best effort: surface the service's own message when it sent one.
		_ = json.Unmarshal(data, &decoded)
		return "", &ServiceError{Status: resp.StatusCode, Message: decoded.Message}
	}

	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return decoded.Response, nil
}
