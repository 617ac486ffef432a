package engine

import (
	"context"
	"net/url"
	"time"
)

// --- Core types ---

// Provider is one registered video site exposing a list/detail JSON API.
type Provider struct {
	Key    string `json:"key" yaml:"key" jsonschema:"Unique site key (e.g. ffzy)"`
	Name   string `json:"name" yaml:"name" jsonschema:"Display name"`
	API    string `json:"api" yaml:"api" jsonschema:"Base API URL"`
	Active bool   `json:"active" yaml:"active" jsonschema:"Whether the site is queried"`
}

// Item is one video record exactly as a provider returned it, plus provenance.
// Values follow encoding/json conventions with numbers kept as json.Number.
type Item map[string]any

// Provenance field names stamped onto every aggregated item.
const (
	FieldSiteKey  = "site_key"
	FieldSiteName = "site_name"
	FieldVodName  = "vod_name"
)

// LatencyUnreachable is returned by CheckLatency when the site is unknown or
// the probe failed.
const LatencyUnreachable = 9999

// ListParams are the operation-specific query keys sent to a provider.
// Zero values are omitted from the query.
type ListParams struct {
	Action  string // ac; "list" when empty
	Type    int    // t
	Page    int    // pg
	Keyword string // wd
	IDs     string // ids
	Hours   int    // h
	NoStamp bool   // skip site_key/site_name injection
}

// FetchResult is the outcome of one provider call.
type FetchResult struct {
	Provider Provider
	Items    []Item
	Err      error
}

// --- Collaborators ---

// Registry is the read side of the provider store.
type Registry interface {
	// ListActive returns active providers in registry order.
	ListActive(ctx context.Context) ([]Provider, error)
	// Get returns the provider with the given key regardless of its active flag.
	Get(ctx context.Context, key string) (Provider, bool, error)
}

// Transport performs a single bounded GET and returns the body of a 2xx response.
type Transport interface {
	Get(ctx context.Context, baseURL string, query url.Values, timeout time.Duration) ([]byte, error)
}

// --- Tool I/O types ---

type SearchInput struct {
	Keyword string `json:"wd" jsonschema:"Search keyword"`
}

type CategoryInput struct {
	Type int `json:"type" jsonschema:"Category id: 1=Movie, 2=TV, 3=Variety, 4=Anime"`
	Page int `json:"page,omitempty" jsonschema:"Page number (default: 1)"`
}

type DetailInput struct {
	SiteKey string `json:"site_key" jsonschema:"Site key"`
	ID      string `json:"id" jsonschema:"Video id"`
}

type HotInput struct{}

type CheckInput struct {
	Key string `json:"key" jsonschema:"Site key"`
}

// ListOutput wraps item lists the way the upstream APIs do.
type ListOutput struct {
	List []Item `json:"list"`
}

type CheckOutput struct {
	Latency int `json:"latency"`
}
