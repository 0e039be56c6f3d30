package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/topoview/topoview/pkg/cache"
	apperrors "github.com/topoview/topoview/pkg/errors"
	"github.com/topoview/topoview/pkg/httputil"
	"github.com/topoview/topoview/pkg/observability"
)

// ClientOptions configures the router API client.
type ClientOptions struct {
	// BaseURL is the router administration API root, e.g.
	// "http://192.168.1.1".
	BaseURL string

	// Cache stores raw endpoint responses. Nil disables caching.
	Cache cache.Cache

	// CacheTTL bounds how long a cached endpoint response is served.
	CacheTTL time.Duration

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Headers are applied to every request, e.g. an auth token.
	Headers map[string]string
}

// Client fetches topology data from the router API over HTTP. Transient
// failures (network errors, 5xx) are retried with exponential backoff;
// endpoint responses are cached under router-scoped keys so several views
// of the same router share one fetch.
type Client struct {
	http    *http.Client
	baseURL string
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a router API client.
func NewClient(opts ClientOptions) (*Client, error) {
	if err := apperrors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: opts.BaseURL,
		cache:   c,
		keyer:   cache.NewScopedKeyer(nil, "router:"+opts.BaseURL+":"),
		ttl:     opts.CacheTTL,
		headers: opts.Headers,
	}, nil
}

// Fetch retrieves all four endpoints and aggregates them into one payload.
//
// Endpoint failures do not abort the fetch: the corresponding payload field
// stays zero and the failures are joined into the returned error. Callers
// decide whether a partial payload is still worth building; a nil Router
// downstream produces a placeholder root rather than an empty screen.
func (c *Client) Fetch(ctx context.Context) (Payload, error) {
	var p Payload
	var errs []error

	var router RouterInfo
	if err := c.get(ctx, EndpointRouter, "/api/router", &router); err != nil {
		errs = append(errs, err)
	} else {
		p.Router = &router
	}
	if err := c.get(ctx, EndpointDevices, "/api/devices", &p.Devices); err != nil {
		errs = append(errs, err)
	}
	if err := c.get(ctx, EndpointMesh, "/api/mesh", &p.Mesh); err != nil {
		errs = append(errs, err)
	}
	if err := c.get(ctx, EndpointFeatures, "/api/features", &p.Features); err != nil {
		errs = append(errs, err)
	}

	return p, errors.Join(errs...)
}

// get fetches one endpoint, consulting the response cache first.
func (c *Client) get(ctx context.Context, endpoint, path string, v any) error {
	url := c.baseURL + path
	key := c.keyer.SourceKey(endpoint, url)

	if data, hit, _ := c.cache.Get(ctx, key); hit {
		if err := json.Unmarshal(data, v); err == nil {
			observability.Cache().OnCacheHit(ctx, "source")
			return nil
		}
		// Corrupt entry; refetch.
		_ = c.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	var body []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.doRequest(ctx, url)
		return err
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, "fetch %s", endpoint)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode %s response", endpoint)
	}
	_ = c.cache.Set(ctx, key, body, c.ttl)
	observability.Cache().OnCacheSet(ctx, "source", len(body))
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
		return nil, httputil.Retryable(err)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, "endpoint not found")
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("status %d", code))
	default:
		return fmt.Errorf("status %d", code)
	}
}
