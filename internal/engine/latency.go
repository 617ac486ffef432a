package engine

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// probeQuery is the minimal request used to time a site.
var probeQuery = url.Values{"ac": {"list"}, "pg": {"1"}}

// CheckLatency times one round trip to the site's API in milliseconds.
// Unknown sites and failed probes both return LatencyUnreachable.
func (a *Aggregator) CheckLatency(ctx context.Context, siteKey string) (ms int) {
	ms = LatencyUnreachable
	metrics.LatencyProbes.Add(1)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("latency probe panicked", slog.String("site", siteKey), slog.Any("panic", r))
			ms = LatencyUnreachable
		}
	}()

	p, err := a.lookup(ctx, siteKey)
	if err != nil {
		return ms
	}

	start := time.Now()
	if err := a.client.Ping(ctx, p, probeQuery, a.cfg.CheckTimeout); err != nil {
		countFetchError(err)
		slog.Debug("latency probe failed", slog.String("site", p.Key), slog.Any("error", err))
		return LatencyUnreachable
	}
	return int(time.Since(start).Milliseconds())
}
