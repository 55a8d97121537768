package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/pkgpulse/pkg/cache"
	"github.com/matzehuels/pkgpulse/pkg/observability"
)

const httpTimeout = 10 * time.Second

// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
// 5xx responses that exhausted their retries).
var ErrNetwork = errors.New("network error")

// StatusError reports a non-200 response. The scraper turns these into
// per-package failure records rather than aborting the run.
type StatusError struct{ Code int }

func (e *StatusError) Error() string { return fmt.Sprintf("HTTP %d", e.Code) }

// Client performs HTTP GET requests with caching, retries, and default
// headers. All methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client backed by the given cache.
//
// Parameters:
//   - backend: cache backend for response bodies (use cache.NewNullCache() for none)
//   - ttl: how long responses stay cached
//   - headers: default headers applied to every request (may be nil)
func NewClient(backend cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   backend,
		ttl:     ttl,
		headers: headers,
	}
}

// Get performs an HTTP GET and returns the response body.
// Transport errors and 5xx responses are retried with backoff; other
// non-200 responses return a [StatusError] immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.doRequest(ctx, url)
		return err
	})
	return body, err
}

// GetCached returns the body for url, serving from cache when possible.
// The key identifies the resource in the cache; refresh bypasses the cache
// and overwrites the entry on success.
func (c *Client) GetCached(ctx context.Context, key, url string, refresh bool) ([]byte, error) {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, "page")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "page")
	}

	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "page", len(body))
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code >= 500:
		return &RetryableError{Err: &StatusError{Code: code}}
	default:
		return &StatusError{Code: code}
	}
}

// StatusCode extracts the HTTP status from an error chain.
// Returns 0 and false if the error does not carry a [StatusError].
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
