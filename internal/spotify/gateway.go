package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"vibes/internal/shared"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// TokenSource supplies the bearer token for outgoing requests. Implemented by
// [vibes/internal/auth.Manager].
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Gateway is the single client for the Spotify Web API.
//
// Every request goes through one pipeline: client-side pacing, bearer
// authorization, then the retry policy. Transient failures (network errors,
// 5xx) back off exponentially up to a bounded attempt budget; a 429 waits
// exactly the server's Retry-After; a 401 forces one token refresh and one
// retry. Other client errors are never retried.
type Gateway struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	logger  *log.Logger

	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration
}

// NewGateway creates a Gateway. Zero config fields fall back to the
// defaults in the embedded example config.
func NewGateway(cfg shared.GatewayConfig, tokens TokenSource, logger *log.Logger) *Gateway {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.BackoffBaseMS <= 0 {
		cfg.BackoffBaseMS = 500
	}
	if cfg.BackoffCapMS <= 0 {
		cfg.BackoffCapMS = 8000
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5.0
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	burst := int(cfg.RatePerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Gateway{
		baseURL:     cfg.BaseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		tokens:      tokens,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: time.Duration(cfg.BackoffBaseMS) * time.Millisecond,
		backoffCap:  time.Duration(cfg.BackoffCapMS) * time.Millisecond,
	}
}

// do runs one API call through the full request pipeline. out, when non-nil,
// receives the decoded success body; empty bodies (202, 204) leave it
// untouched.
func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	endpoint := g.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	refreshed := false
	backoffNext := false
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if backoffNext {
			if err := g.backoffWait(ctx, attempt); err != nil {
				return err
			}
			backoffNext = false
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		token, err := g.tokens.Token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := g.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			backoffNext = true
			g.logger.Warn("request failed", "method", method, "path", path, "attempt", attempt+1, "error", err)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			backoffNext = true
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out != nil && len(data) > 0 {
				if err := json.Unmarshal(data, out); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp)
			g.logger.Warn("rate limited", "path", path, "retry_after", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			// The server told us exactly how long to wait, so the next
			// attempt goes straight out without backoff.
			lastErr = shared.ErrRateLimited
			continue

		case resp.StatusCode == http.StatusUnauthorized:
			if refreshed {
				return fmt.Errorf("%w: request rejected after forced refresh", shared.ErrAuthExpired)
			}
			refreshed = true
			g.tokens.Invalidate()
			g.logger.Debug("token rejected, forcing refresh", "path", path)
			attempt--
			continue

		case resp.StatusCode >= 500:
			lastErr = decodeAPIError(resp.StatusCode, data)
			backoffNext = true
			g.logger.Warn("server error", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			continue

		default:
			apiErr := decodeAPIError(resp.StatusCode, data)
			if apiErr.Reason == reasonNoActiveDevice {
				return fmt.Errorf("%w: %s", shared.ErrNoActiveDevice, apiErr.Message)
			}
			return apiErr
		}
	}

	return fmt.Errorf("%w: %s %s after %d attempts: %w", shared.ErrRetriesExhausted, method, path, g.maxAttempts, lastErr)
}

// backoffWait sleeps for the exponential backoff delay of the given attempt.
func (g *Gateway) backoffWait(ctx context.Context, attempt int) error {
	delay := g.backoffBase << (attempt - 1)
	if delay > g.backoffCap || delay <= 0 {
		delay = g.backoffCap
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryAfter parses the Retry-After header, defaulting to one second when
// missing or malformed.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}

func decodeAPIError(status int, data []byte) *APIError {
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Status != 0 {
		return &APIError{Status: status, Message: body.Error.Message, Reason: body.Error.Reason}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}

// IsNotRetryable reports whether err is a terminal API rejection rather than
// an exhausted retry budget.
func IsNotRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
