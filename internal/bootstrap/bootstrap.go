// Package bootstrap assembles the engine, transport and site store from
// environment variables. Shared by the MCP server and vodctl.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"

	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/engine/sites"
)

// EngineConfig reads engine.Config from the environment.
func EngineConfig() engine.Config {
	d := engine.DefaultConfig()
	return engine.Config{
		SearchTimeout:     env.Duration("SEARCH_TIMEOUT", d.SearchTimeout),
		DetailTimeout:     env.Duration("DETAIL_TIMEOUT", d.DetailTimeout),
		CategoryTimeout:   env.Duration("CATEGORY_TIMEOUT", d.CategoryTimeout),
		HotTimeout:        env.Duration("HOT_TIMEOUT", d.HotTimeout),
		CheckTimeout:      env.Duration("CHECK_TIMEOUT", d.CheckTimeout),
		CategorySites:     env.Int("CATEGORY_SITES", d.CategorySites),
		CategoryLimit:     env.Int("CATEGORY_LIMIT", d.CategoryLimit),
		HotSites:          env.List("HOT_SITES", strings.Join(d.HotSites, ",")),
		HotLimit:          env.Int("HOT_LIMIT", d.HotLimit),
		HotHours:          env.Int("HOT_HOURS", d.HotHours),
		MaxParallel:       env.Int("MAX_PARALLEL", d.MaxParallel),
		RequestsPerSecond: env.Float("REQUESTS_PER_SECOND", 0),
		MaxBodyBytes:      int64(env.Int("MAX_BODY_BYTES", int(d.MaxBodyBytes))),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// StoreOptions reads the registry location from the environment.
func StoreOptions() sites.Options {
	return sites.Options{
		DatabaseURL: env.Str("DATABASE_URL", ""),
		SQLitePath:  env.Str("SQLITE_PATH", sites.DefaultSQLitePath()),
	}
}

// OpenStore opens the registry and seeds it from SITES_FILE when empty.
func OpenStore(ctx context.Context) (sites.Store, error) {
	store, err := sites.Open(ctx, StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open sites store: %w", err)
	}
	if _, err := sites.SeedIfEmpty(ctx, store, env.Str("SITES_FILE", "")); err != nil {
		slog.Warn("sites seed failed", slog.Any("error", err))
	}
	return store, nil
}

// Transport picks the outbound transport. TRANSPORT=stealth routes provider
// calls through a go-stealth browser client, with a Webshare proxy pool when
// WEBSHARE_API_KEY is set. Anything else uses plain net/http.
func Transport(c engine.Config) engine.Transport {
	if env.Str("TRANSPORT", "http") != "stealth" {
		return engine.NewHTTPTransport(c)
	}

	opts := []stealth.ClientOption{stealth.WithTimeout(int(maxTimeout(c).Seconds()) + 1)}
	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed, falling back to net/http", slog.Any("error", err))
		return engine.NewHTTPTransport(c)
	}
	slog.Info("stealth browser client initialized")
	return engine.NewStealthTransport(bc, c)
}

func maxTimeout(c engine.Config) time.Duration {
	m := c.SearchTimeout
	for _, d := range []time.Duration{c.DetailTimeout, c.CategoryTimeout, c.HotTimeout, c.CheckTimeout} {
		if d > m {
			m = d
		}
	}
	return m
}

// InitLogger installs a text slog handler on stderr at LOG_LEVEL.
func InitLogger() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(env.Str("LOG_LEVEL", "info")),
	})))
}

// ParseLevel maps debug|info|warn|error to a slog level; unknown → info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
