package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"
)

type fakeResp struct {
	body  string
	err   error
	delay time.Duration
}

type fakeCall struct {
	URL     string
	Query   url.Values
	Timeout time.Duration
}

// fakeTransport serves canned responses keyed by provider API URL.
type fakeTransport struct {
	mu    sync.Mutex
	resp  map[string]fakeResp
	calls []fakeCall
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{resp: make(map[string]fakeResp)}
}

func (f *fakeTransport) on(api string, r fakeResp) *fakeTransport {
	f.resp[api] = r
	return f
}

func (f *fakeTransport) Get(ctx context.Context, baseURL string, query url.Values, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	f.calls = append(f.calls, fakeCall{URL: baseURL, Query: q, Timeout: timeout})
	r, ok := f.resp[baseURL]
	f.mu.Unlock()

	if !ok {
		return nil, errors.New("connection refused")
	}
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) calledURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.URL)
	}
	return out
}

func (f *fakeTransport) callsTo(api string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.URL == api {
			out = append(out, c)
		}
	}
	return out
}

// fakeRegistry is an in-memory Registry snapshot.
type fakeRegistry struct {
	sites []Provider
	err   error
}

func (r *fakeRegistry) ListActive(context.Context) ([]Provider, error) {
	if r.err != nil {
		return nil, r.err
	}
	return AllActive(r.sites), nil
}

func (r *fakeRegistry) Get(_ context.Context, key string) (Provider, bool, error) {
	if r.err != nil {
		return Provider{}, false, r.err
	}
	for _, p := range r.sites {
		if p.Key == key {
			return p, true, nil
		}
	}
	return Provider{}, false, nil
}

func site(key string) Provider {
	return Provider{Key: key, Name: "Site " + key, API: "http://" + key + ".test/api.php/provide/vod/", Active: true}
}

// listBody renders {"list":[{"vod_name":...}, ...]}.
func listBody(names ...string) string {
	items := make([]map[string]string, 0, len(names))
	for _, n := range names {
		items = append(items, map[string]string{"vod_name": n})
	}
	data, _ := json.Marshal(map[string]any{"list": items})
	return string(data)
}

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprint(it[FieldVodName]))
	}
	return out
}

func testConfig() Config {
	c := DefaultConfig()
	c.SearchTimeout = time.Second
	c.CategoryTimeout = time.Second
	c.DetailTimeout = time.Second
	c.HotTimeout = time.Second
	c.CheckTimeout = time.Second
	return c
}
