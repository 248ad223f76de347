package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrUnavailable marks a request that got no usable response: a
	// network failure or a 2xx body that is not valid JSON. Callers treat
	// it as "no data right now" and stop paging.
	ErrUnavailable = errors.New("coingecko api unavailable")

	// ErrRetriesExhausted is returned when a request is still throttled
	// after the configured number of retries.
	ErrRetriesExhausted = errors.New("throttle retries exhausted")
)

// maxLoggedBody bounds how much of an error body is logged.
const maxLoggedBody = 512

// APIError represents a non-2xx response from the CoinGecko API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
	RetryAfter time.Duration // parsed from Retry-After (seconds), zero if absent
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coingecko api error %d: %s", e.StatusCode, e.Message)
}

// IsThrottled returns true for HTTP 429.
func (e *APIError) IsThrottled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// response is a successful raw response.
type response struct {
	body   []byte
	header http.Header
}

// buildURL resolves path against the base URL unless it is already absolute,
// merging query into any query the path carries.
func (c *Client) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() {
		u, err = url.Parse(c.baseURL + path)
		if err != nil {
			return "", fmt.Errorf("parse url: %w", err)
		}
	}

	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// doRequest performs a single rate-limited GET.
func (c *Client) doRequest(ctx context.Context, endpoint, path string, query url.Values) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	fullURL, err := c.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("request failed", "endpoint", endpoint, "url", fullURL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		c.logger.Error("read response failed", "endpoint", endpoint, "url", fullURL, "error", err)
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return &response{body: body, header: resp.Header}, nil
}

// doWithRetry retries throttled requests with exponential backoff.
// Any other failure is returned immediately.
func (c *Client) doWithRetry(ctx context.Context, endpoint, path string, query url.Values) (*response, error) {
	backoff := c.retryBackoff

	for attempt := 0; ; attempt++ {
		resp, err := c.doRequest(ctx, endpoint, path, query)
		if err == nil {
			return resp, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return nil, err
		}
		if !apiErr.IsThrottled() {
			c.logger.Error("request failed",
				"endpoint", endpoint,
				"status", apiErr.StatusCode,
				"body", truncate(apiErr.Body, maxLoggedBody),
			)
			return nil, err
		}

		if c.observer != nil {
			c.observer.ObserveThrottle(endpoint)
		}
		if attempt >= c.maxRetries {
			c.logger.Error("rate limit retries exhausted", "endpoint", endpoint, "attempts", attempt+1)
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt+1, err)
		}

		wait := backoff
		if apiErr.RetryAfter > wait {
			wait = apiErr.RetryAfter
		}
		c.logger.Warn("rate limit exceeded, retrying",
			"endpoint", endpoint,
			"attempt", attempt+1,
			"backoff", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}
}

// get performs a GET with retries and decodes the JSON body into result.
// The response headers are returned for callers that page via Link.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, result any) (http.Header, error) {
	resp, err := c.doWithRetry(ctx, endpoint, path, query)
	if err != nil {
		return nil, err
	}

	// A 2xx body that is not JSON (e.g. a CDN challenge page) counts as no data.
	if err := json.Unmarshal(resp.body, result); err != nil {
		c.logger.Error("decode response failed",
			"endpoint", endpoint,
			"error", err,
			"body", truncate(resp.body, maxLoggedBody),
		)
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrUnavailable, err)
	}

	return resp.header, nil
}

func (c *Client) observe(endpoint string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, d)
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
