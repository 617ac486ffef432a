package engine

import (
	"context"
	"net/http"
	"net/url"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"
)

type doFunc func(method, url string, headers map[string]string) ([]byte, int, error)

// StealthTransport sends provider requests through a go-stealth browser client
// (Chrome TLS fingerprint, optional rotating proxy pool).
// The client call itself is not cancellable; a timed-out call is abandoned
// and finishes in the background under the client's own timeout.
type StealthTransport struct {
	do           doFunc
	limiter      *rate.Limiter
	maxBodyBytes int64
}

// NewStealthTransport wraps bc as a Transport.
func NewStealthTransport(bc *stealth.BrowserClient, c Config) *StealthTransport {
	return newStealthTransport(func(method, u string, headers map[string]string) ([]byte, int, error) {
		data, _, status, err := bc.Do(method, u, headers, nil)
		return data, status, err
	}, c)
}

func newStealthTransport(do doFunc, c Config) *StealthTransport {
	c = c.withDefaults()
	return &StealthTransport{do: do, limiter: newLimiter(c.RequestsPerSecond), maxBodyBytes: c.MaxBodyBytes}
}

type doResult struct {
	body   []byte
	status int
	err    error
}

func (t *StealthTransport) Get(ctx context.Context, baseURL string, query url.Values, timeout time.Duration) ([]byte, error) {
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

	ch := make(chan doResult, 1)
	go func() {
		body, status, err := t.do(http.MethodGet, u, requestHeaders())
		ch <- doResult{body, status, err}
	}()

	var r doResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.status < 200 || r.status > 299 {
		return nil, &httpStatusError{StatusCode: r.status}
	}
	if int64(len(r.body)) > t.maxBodyBytes {
		return nil, &FetchError{Kind: KindMalformed, Err: errBodyTooLarge}
	}
	return r.body, nil
}
