package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SearchTimeout   time.Duration
	DetailTimeout   time.Duration
	CategoryTimeout time.Duration
	HotTimeout      time.Duration
	CheckTimeout    time.Duration

	CategorySites int      // providers queried by Category
	CategoryLimit int      // Category truncation
	HotSites      []string // Hot allow-list, in priority order
	HotLimit      int
	HotHours      int

	MaxParallel       int     // fan-out concurrency cap (0 = one task per provider)
	RequestsPerSecond float64 // outbound rate limit (0 = unlimited)
	MaxBodyBytes      int64
	HTTPClient        *http.Client
}

// DefaultConfig returns the stock operation policy.
func DefaultConfig() Config {
	return Config{
		SearchTimeout:   4 * time.Second,
		DetailTimeout:   6 * time.Second,
		CategoryTimeout: 3 * time.Second,
		HotTimeout:      3 * time.Second,
		CheckTimeout:    3 * time.Second,
		CategorySites:   3,
		CategoryLimit:   20,
		HotSites:        []string{"ffzy", "bfzy", "lzi"},
		HotLimit:        12,
		HotHours:        24,
		MaxParallel:     16,
		MaxBodyBytes:    8 << 20,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = d.SearchTimeout
	}
	if c.DetailTimeout <= 0 {
		c.DetailTimeout = d.DetailTimeout
	}
	if c.CategoryTimeout <= 0 {
		c.CategoryTimeout = d.CategoryTimeout
	}
	if c.HotTimeout <= 0 {
		c.HotTimeout = d.HotTimeout
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = d.CheckTimeout
	}
	if c.CategorySites <= 0 {
		c.CategorySites = d.CategorySites
	}
	if c.CategoryLimit <= 0 {
		c.CategoryLimit = d.CategoryLimit
	}
	if c.HotSites == nil {
		c.HotSites = d.HotSites
	}
	if c.HotLimit <= 0 {
		c.HotLimit = d.HotLimit
	}
	if c.HotHours <= 0 {
		c.HotHours = d.HotHours
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	return c
}
