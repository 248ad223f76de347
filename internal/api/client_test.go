package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter records how many times requests were gated.
type countingLimiter struct {
	calls atomic.Int32
	err   error
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.calls.Add(1)
	return l.err
}

// recordingObserver captures request telemetry.
type recordingObserver struct {
	mu        sync.Mutex
	requests  []int
	throttles int
}

func (o *recordingObserver) ObserveRequest(endpoint string, statusCode int, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, statusCode)
}

func (o *recordingObserver) ObserveThrottle(endpoint string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.throttles++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// newTestClient builds a client against server with fast retries.
func newTestClient(serverURL string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithRetries(3, 5*time.Millisecond),
		WithLogger(quietLogger()),
	}
	return NewClient(serverURL, "test-key", append(base, opts...)...)
}

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", "test-key")

		assert.Equal(t, "https://api.example.com", c.baseURL)
		assert.Equal(t, "test-key", c.apiKey)
		assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, 10*time.Second, c.retryBackoff)
		assert.Equal(t, DefaultPageSize, c.pageSize)
		assert.NotNil(t, c.logger)
		assert.NotNil(t, c.limiter)
	})

	t.Run("with options", func(t *testing.T) {
		logger := quietLogger()
		limiter := &countingLimiter{}
		observer := &recordingObserver{}
		hc := &http.Client{Timeout: 10 * time.Second}

		c := NewClient("https://api.example.com", "",
			WithHTTPClient(hc),
			WithTimeout(15*time.Second),
			WithRetries(2, 500*time.Millisecond),
			WithLogger(logger),
			WithLimiter(limiter),
			WithObserver(observer),
			WithPageSize(100),
		)

		assert.Same(t, hc, c.httpClient)
		assert.Equal(t, 15*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 2, c.maxRetries)
		assert.Equal(t, 500*time.Millisecond, c.retryBackoff)
		assert.Same(t, logger, c.logger)
		assert.Same(t, limiter, c.limiter)
		assert.Same(t, observer, c.observer)
		assert.Equal(t, 100, c.pageSize)
	})

	t.Run("nil logger and limiter keep defaults", func(t *testing.T) {
		c := NewClient("https://api.example.com", "", WithLogger(nil), WithLimiter(nil), WithPageSize(0))
		assert.NotNil(t, c.logger)
		assert.IsType(t, unlimited{}, c.limiter)
		assert.Equal(t, DefaultPageSize, c.pageSize)
	})
}

// TestAPIError tests the APIError type.
func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "Not Found"}
	assert.Equal(t, "coingecko api error 404: Not Found", err.Error())

	tests := []struct {
		code int
		want bool
	}{
		{429, true},
		{400, false},
		{401, false},
		{404, false},
		{500, false},
		{503, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&APIError{StatusCode: tt.code}).IsThrottled(), "status %d", tt.code)
	}
}

func TestBuildURL(t *testing.T) {
	c := NewClient("https://api.example.com/api/v3", "")

	t.Run("relative path", func(t *testing.T) {
		got, err := c.buildURL("/coins/categories", url.Values{"order": {"market_cap_desc"}})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/api/v3/coins/categories?order=market_cap_desc", got)
	})

	t.Run("absolute url is kept", func(t *testing.T) {
		got, err := c.buildURL("https://other.example.com/x", url.Values{"page": {"2"}})
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com/x?page=2", got)
	})

	t.Run("query merges with existing", func(t *testing.T) {
		got, err := c.buildURL("https://other.example.com/x?a=1&page=1", url.Values{"page": {"2"}})
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com/x?a=1&page=2", got)
	})

	t.Run("no query", func(t *testing.T) {
		got, err := c.buildURL("/ping", nil)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/api/v3/ping", got)
	})
}

// TestDoRequest tests the single-request path.
func TestDoRequest(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "test-key", r.Header.Get(APIKeyHeader))
			assert.Equal(t, "10", r.URL.Query().Get("per_page"))
			w.Header().Set("Link", `<https://x/y?page=2>; rel="next"`)
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		limiter := &countingLimiter{}
		c := newTestClient(server.URL, WithLimiter(limiter))
		resp, err := c.doRequest(context.Background(), "test", "/test", url.Values{"per_page": {"10"}})
		require.NoError(t, err)
		assert.Equal(t, `{"status": "ok"}`, string(resp.body))
		assert.Equal(t, `<https://x/y?page=2>; rel="next"`, resp.header.Get("Link"))
		assert.Equal(t, int32(1), limiter.calls.Load())
	})

	t.Run("empty API key is still sent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, present := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]
			assert.True(t, present)
			assert.Equal(t, "", r.Header.Get(APIKeyHeader))
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "", WithLogger(quietLogger()))
		_, err := c.doRequest(context.Background(), "test", "/test", nil)
		require.NoError(t, err)
	})

	t.Run("4xx returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)
		_, err := c.doRequest(context.Background(), "test", "/test", nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Contains(t, string(apiErr.Body), "not found")
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("429 carries Retry-After", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := newTestClient(server.URL)
		_, err := c.doRequest(context.Background(), "test", "/test", nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsThrottled())
		assert.Equal(t, 7*time.Second, apiErr.RetryAfter)
	})

	t.Run("network failure is ErrUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		serverURL := server.URL
		server.Close()

		observer := &recordingObserver{}
		c := newTestClient(serverURL, WithObserver(observer))
		_, err := c.doRequest(context.Background(), "test", "/test", nil)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, []int{0}, observer.requests)
	})

	t.Run("context cancellation is not ErrUnavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		c := newTestClient(server.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.doRequest(ctx, "test", "/test", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("limiter error aborts before sending", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer server.Close()

		c := newTestClient(server.URL, WithLimiter(&countingLimiter{err: context.DeadlineExceeded}))
		_, err := c.doRequest(context.Background(), "test", "/test", nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, int32(0), hits.Load())
	})
}

// TestDoWithRetry tests the throttle retry loop.
func TestDoWithRetry(t *testing.T) {
	t.Run("succeeds on first try", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)
		resp, err := c.doWithRetry(context.Background(), "test", "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, `{"ok": true}`, string(resp.body))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 429 and succeeds", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`rate limited`))
				return
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		limiter := &countingLimiter{}
		observer := &recordingObserver{}
		c := newTestClient(server.URL, WithLimiter(limiter), WithObserver(observer))
		resp, err := c.doWithRetry(context.Background(), "test", "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, `{"ok": true}`, string(resp.body))
		assert.Equal(t, int32(2), attempts.Load())
		assert.Equal(t, int32(2), limiter.calls.Load(), "every attempt waits on the limiter")
		assert.Equal(t, 1, observer.throttles)
		assert.Equal(t, []int{429, 200}, observer.requests)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
			var attempts atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(code)
			}))

			c := newTestClient(server.URL)
			_, err := c.doWithRetry(context.Background(), "test", "/test", nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, code, apiErr.StatusCode)
			assert.Equal(t, int32(1), attempts.Load(), "status %d", code)
			server.Close()
		}
	})

	t.Run("retries exhausted", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := newTestClient(server.URL, WithRetries(2, time.Millisecond))
		_, err := c.doWithRetry(context.Background(), "test", "/test", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRetriesExhausted)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsThrottled())

		// 1 initial + 2 retries = 3 attempts
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("backoff doubles", func(t *testing.T) {
		var times []time.Time
		var mu sync.Mutex
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := newTestClient(server.URL, WithRetries(2, 20*time.Millisecond))
		_, err := c.doWithRetry(context.Background(), "test", "/test", nil)
		require.ErrorIs(t, err, ErrRetriesExhausted)

		require.Len(t, times, 3)
		assert.GreaterOrEqual(t, times[1].Sub(times[0]), 20*time.Millisecond)
		assert.GreaterOrEqual(t, times[2].Sub(times[1]), 40*time.Millisecond)
	})

	t.Run("context cancellation during backoff", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := newTestClient(server.URL, WithRetries(5, time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := c.doWithRetry(ctx, "test", "/test", nil)
		assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
		assert.Less(t, time.Since(start), 900*time.Millisecond)
	})
}

func TestGet(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Test", "yes")
			w.Write([]byte(`{"name": "Binance"}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)
		var out ExchangeTickersResponse
		header, err := c.get(context.Background(), "test", "/x", nil, &out)
		require.NoError(t, err)
		assert.Equal(t, "Binance", out.Name)
		assert.Equal(t, "yes", header.Get("X-Test"))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)
		var out ExchangeTickersResponse
		_, err := c.get(context.Background(), "test", "/x", nil, &out)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Contains(t, err.Error(), "unmarshal response")
	})
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, 30*time.Second, parseRetryAfter("30"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
