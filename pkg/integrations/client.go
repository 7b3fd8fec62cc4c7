package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/httputil"
	"github.com/matzehuels/tierviz/pkg/observability"
)

// Client is the shared HTTP layer of the API clients: response caching,
// retries and default headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	policy    httputil.Policy
	logger    *log.Logger
}

// NewClient creates a Client. Cached responses are stored under namespace
// with the given ttl. A nil cache disables caching. Headers are sent with
// every request and may be nil.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		policy:    httputil.DefaultPolicy,
		logger:    log.Default(),
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// SetKeyer replaces the cache key scheme.
func (c *Client) SetKeyer(k cache.Keyer) { c.keyer = k }

// SetRetryPolicy replaces the retry policy.
func (c *Client) SetRetryPolicy(p httputil.Policy) { c.policy = p }

// SetLogger replaces the logger used for cache diagnostics.
func (c *Client) SetLogger(l *log.Logger) { c.logger = l }

// Cached loads v from the cache, or runs fetch (with retries) and stores
// the JSON encoding of v. With refresh set the cache is not consulted, but
// the fresh result is still written back. Cache failures are logged and
// otherwise ignored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		data, ok, err := c.cache.Get(ctx, k)
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "err", err)
		}
		if ok && json.Unmarshal(data, v) == nil {
			c.logger.Debug("cache hit", "key", key)
			observability.Cache().OnCacheHit(ctx, "http")
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	if err := httputil.Retry(ctx, c.policy, fetch); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "err", err)
		return nil
	}
	if err := c.cache.Set(ctx, k, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
		return nil
	}
	observability.Cache().OnCacheSet(ctx, "http", len(data))
	return nil
}

// Get performs a GET request and decodes the JSON response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders is Get with extra headers; they override the defaults.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetRaw returns the response body, which must be valid JSON.
func (c *Client) GetRaw(ctx context.Context, url string) (json.RawMessage, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, fmt.Errorf("decode %s: invalid JSON", url)
	}
	return json.RawMessage(data), nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, url); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus maps HTTP statuses onto the package sentinels, keeping the
// retry classification of [httputil.CheckStatus].
func checkStatus(code int, url string) error {
	if code == http.StatusNotFound {
		return ErrNotFound
	}
	err := httputil.CheckStatus(code, url)
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%w: %w", ErrNetwork, unwrapRetryable(err))
	if httputil.IsRetryable(err) {
		return httputil.Retryable(wrapped)
	}
	return wrapped
}

func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
