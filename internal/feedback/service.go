// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feedback runs the per-message feedback workflow: collecting a
// rating and optional comment, submitting it to the feedback service, and
// reporting the outcome back into the transcript.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Configuration constants for the feedback API.
const (
	// DefaultTimeout is the default timeout for a submission.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 256 * 1024
)

// ErrUnavailable indicates the feedback service could not be reached.
var ErrUnavailable = errors.New("feedback service unavailable")

// sharedHTTPClient pools connections for all feedback submissions.
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
// WIRE TYPES
// =============================================================================

// Request is the feedback submission payload.
type Request struct {
	MessageID    string `json:"messageId"`
	UserFeedback string `json:"userFeedback"` // "positive" or "negative"
	SessionID    string `json:"sessionId"`
	Comment      string `json:"comment"`
}

// Response is the feedback service acknowledgment. Success=false and a
// transport error are distinct but equivalent failures for workflow
// purposes; Message, when present, carries the user-visible reason.
type Response struct {
	Success      bool   `json:"success"`
	Status       string `json:"status,omitempty"`
	UserFeedback string `json:"user_feedback,omitempty"`
	Comment      string `json:"comment,omitempty"`
	Message      string `json:"message,omitempty"`
}

// =============================================================================
// SERVICE CLIENT
// =============================================================================

// Submitter is the boundary the workflow submits through. Satisfied by
// *Client and by test fakes.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Response, error)
}

// Client talks to the feedback service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a feedback client for the given service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: sharedHTTPClient,
	}
}

// Submit posts one piece of feedback and returns the service acknowledgment.
func (c *Client) Submit(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode feedback request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/feedback", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build feedback request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return Response{}, fmt.Errorf("read feedback response: %w", err)
	}

	var decoded Response
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Response{}, fmt.Errorf("decode feedback response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && decoded.Message == "" {
		return decoded, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	return decoded, nil
}
