package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Get(t *testing.T) {
	var gotQuery url.Values
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"list":[{"vod_name":"X"}]}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(Config{})
	body, err := tr.Get(context.Background(), srv.URL+"/api.php/provide/vod/?key=secret&ac=videolist",
		url.Values{"ac": {"list"}, "wd": {"a b"}}, time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[{"vod_name":"X"}]}`, string(body))

	assert.Equal(t, "secret", gotQuery.Get("key"), "base url params preserved")
	assert.Equal(t, "list", gotQuery.Get("ac"), "operation params override base")
	assert.Equal(t, "a b", gotQuery.Get("wd"))
	assert.NotEmpty(t, gotUA)
	assert.Contains(t, gotAccept, "application/json")
}

func TestHTTPTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(Config{}).Get(context.Background(), srv.URL, nil, time.Second)
	require.Error(t, err)
	fe := classify("a", err)
	assert.Equal(t, KindStatus, fe.Kind)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
}

func TestHTTPTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := NewHTTPTransport(Config{}).Get(context.Background(), srv.URL, nil, 50*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, kindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPTransport_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`{"data":[{"vod_name":"Z"}]}`))
	require.NoError(t, gz.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	body, err := NewHTTPTransport(Config{}).Get(context.Background(), srv.URL, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, names(ExtractItems(body)))
}

func TestHTTPTransport_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(Config{MaxBodyBytes: 1024}).Get(context.Background(), srv.URL, nil, time.Second)
	require.Error(t, err)
	assert.Equal(t, KindMalformed, FetchErrorKind(err))
}

func TestHTTPTransport_BadURL(t *testing.T) {
	tr := NewHTTPTransport(Config{})
	for _, u := range []string{"ftp://example.com/api", "://broken", ""} {
		_, err := tr.Get(context.Background(), u, nil, time.Second)
		assert.Equal(t, KindMalformed, FetchErrorKind(err), u)
	}
}

func TestHTTPTransport_RateLimitCountsAgainstTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(Config{RequestsPerSecond: 0.01})
	_, err := tr.Get(context.Background(), srv.URL, nil, time.Second)
	require.NoError(t, err, "first call uses the burst token")

	start := time.Now()
	_, err = tr.Get(context.Background(), srv.URL, nil, 50*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, FetchErrorKind(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildURL(t *testing.T) {
	got, err := buildURL("https://api.example.com/provide/vod/?ac=videolist", url.Values{"ac": {"detail"}, "ids": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/provide/vod/?ac=detail&ids=1", got)
}
