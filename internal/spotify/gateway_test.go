package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"vibes/internal/shared"
)

// staticTokens is a TokenSource that serves from a fixed list, advancing on
// each Invalidate.
type staticTokens struct {
	mu            sync.Mutex
	tokens        []string
	idx           int
	invalidations int
}

func (s *staticTokens) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1], nil
	}
	return s.tokens[s.idx], nil
}

func (s *staticTokens) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
	if s.idx < len(s.tokens)-1 {
		s.idx++
	}
}

func newTestGateway(t *testing.T, baseURL string, tokens TokenSource) *Gateway {
	t.Helper()
	g := NewGateway(shared.GatewayConfig{
		MaxAttempts:   4,
		BackoffBaseMS: 1,
		BackoffCapMS:  4,
		RatePerSecond: 1000,
	}, tokens, shared.NewLogger(io.Discard))
	g.baseURL = baseURL
	return g
}

func TestGatewaySendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected Bearer tok-1, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	if err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGatewayRetriesServerErrors(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	if err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil); err != nil {
		t.Fatalf("expected recovery within budget, got %v", err)
	}
	if hits != 3 {
		t.Errorf("expected 3 requests, got %d", hits)
	}
}

func TestGatewayBoundedAttempts(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil)
	if !errors.Is(err, shared.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if hits != 4 {
		t.Errorf("expected exactly 4 attempts, got %d", hits)
	}
}

func TestGatewayHonorsRetryAfter(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})

	start := time.Now()
	if err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < time.Second {
		t.Errorf("expected the full Retry-After wait, waited only %v", elapsed)
	}
	if hits != 2 {
		t.Errorf("expected 2 requests, got %d", hits)
	}
}

func TestGatewayRateLimitSurvivesExhaustion(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil)

	if !errors.Is(err, shared.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, shared.ErrRateLimited) {
		t.Fatalf("expected the rate-limit identity to survive exhaustion, got %v", err)
	}
	if hits != 4 {
		t.Errorf("expected exactly 4 attempts, got %d", hits)
	}
}

func TestGatewayForcedRefreshOn401(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("Authorization") == "Bearer tok-stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tokens := &staticTokens{tokens: []string{"tok-stale", "tok-fresh"}}
	g := newTestGateway(t, srv.URL, tokens)

	if err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.invalidations != 1 {
		t.Errorf("expected exactly one invalidation, got %d", tokens.invalidations)
	}
	if hits != 2 {
		t.Errorf("expected 2 requests, got %d", hits)
	}
}

func TestGatewaySingleRefreshThenAuthExpired(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &staticTokens{tokens: []string{"tok-1"}}
	g := newTestGateway(t, srv.URL, tokens)

	err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil)
	if !errors.Is(err, shared.ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if hits != 2 {
		t.Errorf("expected exactly 2 requests (original plus one retry), got %d", hits)
	}
	if tokens.invalidations != 1 {
		t.Errorf("expected exactly one invalidation, got %d", tokens.invalidations)
	}
}

func TestGatewayNoActiveDevice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"Player command failed: No active device found","reason":"NO_ACTIVE_DEVICE"}}`)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	err := g.do(context.Background(), http.MethodPut, "/me/player/pause", nil, nil, nil)
	if !errors.Is(err, shared.ErrNoActiveDevice) {
		t.Fatalf("expected ErrNoActiveDevice, got %v", err)
	}
}

func TestGatewayClientErrorNotRetried(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"status":403,"message":"Premium required","reason":"PREMIUM_REQUIRED"}}`)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, &staticTokens{tokens: []string{"tok-1"}})
	err := g.do(context.Background(), http.MethodPut, "/me/player/play", nil, nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Reason != "PREMIUM_REQUIRED" {
		t.Errorf("unexpected error details: %+v", apiErr)
	}
	if hits != 1 {
		t.Errorf("expected no retries on 4xx, got %d requests", hits)
	}
}

func TestGatewayTokenSourceFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server without a token")
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, failingTokens{})
	err := g.do(context.Background(), http.MethodGet, "/me/player", nil, nil, nil)
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

type failingTokens struct{}

func (failingTokens) Token(context.Context) (string, error) {
	return "", shared.ErrNotAuthenticated
}

func (failingTokens) Invalidate() {}

func TestRetryAfterParsing(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected time.Duration
	}{
		{"seconds", "3", 3 * time.Second},
		{"zero", "0", 0},
		{"missing", "", time.Second},
		{"malformed", "soon", time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tc.header != "" {
				resp.Header.Set("Retry-After", tc.header)
			}
			if got := retryAfter(resp); got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
