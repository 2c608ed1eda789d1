// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"testing"
)

// resolveServer spins up a fake resolution service and counts its hits.
func resolveServer(t *testing.T, articles map[string]string, hits *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if r.Method != http.MethodPost || r.URL.Path != "/articles/resolve" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req resolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		out := make(map[string]string)
		for _, num := range req.ArticleNumbers {
			if id, ok := articles[num]; ok {
				out[num] = id
			}
		}
		json.NewEncoder(w).Encode(resolveResponse{Articles: out})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// =============================================================================
// RESOLVE TESTS
// =============================================================================

func TestClient_Resolve(t *testing.T) {
	hits := 0
	srv := resolveServer(t, map[string]string{
		"000005262": "ka0AAA",
		"000005218": "ka0BBB",
	}, &hits)

	c := NewClient(srv.URL)
	got, err := c.Resolve(context.Background(), []string{"000005262", "000005218", "000000000"})
	if err != nil {
		t.Fatalf("Resolve returned %v", err)
	}

	want := map[string]string{"000005262": "ka0AAA", "000005218": "ka0BBB"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want %v (unknown numbers absent)", got, want)
	}
	if hits != 1 {
		t.Errorf("service hits = %d, want 1", hits)
	}
}

func TestClient_Resolve_EmptyBatch(t *testing.T) {
	hits := 0
	srv := resolveServer(t, nil, &hits)

	c := NewClient(srv.URL)
	got, err := c.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve returned %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Resolve = %v, want empty map", got)
	}
	if hits != 0 {
		t.Error("empty batch must not hit the service")
	}
}

func TestClient_Resolve_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Resolve(context.Background(), []string{"000005262"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestClient_Resolve_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Resolve(context.Background(), []string{"000005262"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

// =============================================================================
// CACHE INTEGRATION TESTS
// =============================================================================

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "resolutions.db"))
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_RoundTrip(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	if got := cache.Get(ctx, []string{"000005262"}); len(got) != 0 {
		t.Errorf("cold cache Get = %v, want empty", got)
	}

	cache.Put(ctx, map[string]string{"000005262": "ka0AAA", "000005218": "ka0BBB"})

	got := cache.Get(ctx, []string{"000005262", "000005218", "000000000"})
	want := map[string]string{"000005262": "ka0AAA", "000005218": "ka0BBB"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}

	// Refreshing an existing row replaces the identifier.
	cache.Put(ctx, map[string]string{"000005262": "ka0NEW"})
	got = cache.Get(ctx, []string{"000005262"})
	if got["000005262"] != "ka0NEW" {
		t.Errorf("refreshed resolution = %v", got)
	}
}

func TestClient_Resolve_CacheFirst(t *testing.T) {
	hits := 0
	srv := resolveServer(t, map[string]string{"000005262": "ka0AAA"}, &hits)

	c := NewClient(srv.URL)
	c.SetCache(openTestCache(t))

	for i := 0; i < 2; i++ {
		got, err := c.Resolve(context.Background(), []string{"000005262"})
		if err != nil {
			t.Fatalf("Resolve #%d returned %v", i+1, err)
		}
		if got["000005262"] != "ka0AAA" {
			t.Fatalf("Resolve #%d = %v", i+1, got)
		}
	}
	if hits != 1 {
		t.Errorf("service hits = %d, want 1 (second lookup served from cache)", hits)
	}
}

func TestClient_Resolve_PartialCacheDegradation(t *testing.T) {
	cache := openTestCache(t)
	cache.Put(context.Background(), map[string]string{"000005262": "ka0AAA"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // the service is down

	c := NewClient(srv.URL)
	c.SetCache(cache)

	got, err := c.Resolve(context.Background(), []string{"000005262", "000005218"})
	if err != nil {
		t.Fatalf("partial cache hits should not surface the fetch error, got %v", err)
	}
	want := map[string]string{"000005262": "ka0AAA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve = %v, want cached subset %v", got, want)
	}
}
