package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// Client fetches item lists from a single provider.
type Client struct {
	transport Transport
}

// NewClient wraps a Transport.
func NewClient(t Transport) *Client {
	return &Client{transport: t}
}

// Query renders list params over the fixed ac/out base.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	ac := p.Action
	if ac == "" {
		ac = "list"
	}
	q.Set("ac", ac)
	q.Set("out", "json")
	if p.Type != 0 {
		q.Set("t", strconv.Itoa(p.Type))
	}
	if p.Page != 0 {
		q.Set("pg", strconv.Itoa(p.Page))
	}
	if p.Keyword != "" {
		q.Set("wd", p.Keyword)
	}
	if p.IDs != "" || ac == "detail" {
		q.Set("ids", p.IDs)
	}
	if p.Hours != 0 {
		q.Set("h", strconv.Itoa(p.Hours))
	}
	return q
}

// FetchList issues exactly one GET to the provider and extracts its items.
// Failures are reported in FetchResult.Err with no items.
func (c *Client) FetchList(ctx context.Context, p Provider, params ListParams, timeout time.Duration) (res FetchResult) {
	res.Provider = p
	metrics.ProviderFetches.Add(1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Items = nil
			res.Err = &FetchError{Site: p.Key, Kind: KindInternal, Err: fmt.Errorf("panic: %v", r)}
		}
		if res.Err != nil {
			countFetchError(res.Err)
			slog.Debug("provider fetch failed",
				slog.String("site", p.Key),
				slog.Duration("elapsed", time.Since(start)),
				slog.Any("error", res.Err))
		}
	}()

	body, err := c.transport.Get(ctx, p.API, params.Query(), timeout)
	if err != nil {
		res.Err = classify(p.Key, err)
		return res
	}

	items, err := parseItems(body)
	if err != nil {
		res.Err = &FetchError{Site: p.Key, Kind: KindMalformed, Err: err}
		return res
	}
	if !params.NoStamp {
		stamp(items, p)
	}
	res.Items = items
	return res
}

// Ping performs one GET and discards the body. Used for latency probes.
func (c *Client) Ping(ctx context.Context, p Provider, query url.Values, timeout time.Duration) error {
	if _, err := c.transport.Get(ctx, p.API, query, timeout); err != nil {
		return classify(p.Key, err)
	}
	return nil
}
