// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package knowledge resolves article numbers against the knowledge-base
// lookup service.
//
// Resolution is best-effort by contract: a failed or partial lookup degrades
// to "no link" for the affected citations and is never surfaced to the user
// as an error.
package knowledge

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

// Configuration constants for the knowledge-resolution API.
const (
	// DefaultTimeout is the default timeout for resolution requests.
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 1 * 1024 * 1024 // 1MB
)

// ErrUnavailable indicates the knowledge service could not be reached.
var ErrUnavailable = errors.New("knowledge service unavailable")

// sharedHTTPClient pools connections for all resolution requests.
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
// RESOLVER CLIENT
// =============================================================================

// Client resolves batches of 9-digit article numbers to opaque article
// identifiers over HTTP, consulting a local cache first when one is
// configured. Article identifiers are stable, so cached resolutions never
// expire from the client's point of view.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache // optional, nil disables caching
}

// NewClient creates a resolver client for the given service base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: sharedHTTPClient,
	}
}

// SetCache attaches a local resolution cache. Cache failures are silent:
// a broken cache only costs extra network lookups.
func (c *Client) SetCache(cache *Cache) {
	c.cache = cache
}

type resolveRequest struct {
	ArticleNumbers []string `json:"articleNumbers"`
}

type resolveResponse struct {
	Articles map[string]string `json:"articles"`
}

// Resolve maps the given article numbers to opaque identifiers. Numbers the
// service does not know are absent from the result. When every number is
// already cached, no network call is made. A network failure with partial
// cache hits returns the cached subset rather than an error.
func (c *Client) Resolve(ctx context.Context, articleNumbers []string) (map[string]string, error) {
	if len(articleNumbers) == 0 {
		return map[string]string{}, nil
	}

	resolved := make(map[string]string, len(articleNumbers))
	missing := articleNumbers

	if c.cache != nil {
		cached := c.cache.Get(ctx, articleNumbers)
		missing = missing[:0:0]
		for _, num := range articleNumbers {
			if id, ok := cached[num]; ok {
				resolved[num] = id
			} else {
				missing = append(missing, num)
			}
		}
		if len(missing) == 0 {
			return resolved, nil
		}
	}

	fetched, err := c.fetch(ctx, missing)
	if err != nil {
		if len(resolved) > 0 {
			// Partial degradation: serve what the cache knew.
			return resolved, nil
		}
		return nil, err
	}

	for num, id := range fetched {
		resolved[num] = id
	}
	if c.cache != nil && len(fetched) > 0 {
		c.cache.Put(ctx, fetched)
	}
	return resolved, nil
}

// fetch performs the batched HTTP lookup.
func (c *Client) fetch(ctx context.Context, articleNumbers []string) (map[string]string, error) {
	body, err := json.Marshal(resolveRequest{ArticleNumbers: articleNumbers})
	if err != nil {
		return nil, fmt.Errorf("encode resolution request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/articles/resolve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build resolution request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read resolution response: %w", err)
	}

	var decoded resolveResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode resolution response: %w", err)
	}
	if decoded.Articles == nil {
		return map[string]string{}, nil
	}
	return decoded.Articles, nil
}
