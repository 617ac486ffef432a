package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"
)

// HTTPTransport is the default Transport: one GET per call, no retries.
type HTTPTransport struct {
	client       *http.Client
	limiter      *rate.Limiter // nil = unlimited
	maxBodyBytes int64
}

// NewHTTPTransport builds a transport from engine config.
func NewHTTPTransport(c Config) *HTTPTransport {
	c = c.withDefaults()
	t := &HTTPTransport{client: c.HTTPClient, maxBodyBytes: c.MaxBodyBytes}
	if t.client == nil {
		t.client = newFetchClient()
	}
	t.limiter = newLimiter(c.RequestsPerSecond)
	return t
}

// newLimiter returns nil for rps <= 0.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// waitLimiter blocks for a token. Wait fails early when the deadline cannot be met.
func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	return nil
}

// requestHeaders are the browser-like headers sent to every provider.
func requestHeaders() map[string]string {
	h := make(map[string]string)
	for k, v := range stealth.ChromeHeaders() {
		h[k] = v
	}
	h["Accept"] = "application/json, text/plain, */*"
	return h
}

// newFetchClient creates an HTTP client tuned for many short JSON calls.
// Per-call deadlines come from the request context.
func newFetchClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("stopped after 5 redirects")
			}
			return nil
		},
	}
}

// Get issues a single GET of baseURL merged with query, bounded by timeout.
func (t *HTTPTransport) Get(ctx context.Context, baseURL string, query url.Values, timeout time.Duration) ([]byte, error) {
	u, err := buildURL(baseURL, query)
	if err != nil {
		return nil, &FetchError{Kind: KindMalformed, Err: err}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := waitLimiter(ctx, t.limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindMalformed, Err: err}
	}
	for k, v := range requestHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &httpStatusError{StatusCode: resp.StatusCode}
	}

	body, err := readResponseBody(resp, t.maxBodyBytes)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return body, nil
}

// buildURL overlays query onto any parameters already present in baseURL.
func buildURL(baseURL string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}
	q := u.Query()
	for k, vs := range query {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var errBodyTooLarge = errors.New("response body too large")

// readResponseBody reads at most limit bytes, handling gzip if needed.
func readResponseBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &FetchError{Kind: KindMalformed, Err: err}
		}
		defer gz.Close()
		r = gz
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &FetchError{Kind: KindMalformed, Err: errBodyTooLarge}
	}
	return data, nil
}
