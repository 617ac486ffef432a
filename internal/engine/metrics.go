package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests   atomic.Int64
	CategoryRequests atomic.Int64
	DetailRequests   atomic.Int64
	HotRequests      atomic.Int64
	LatencyProbes    atomic.Int64
	ProviderFetches  atomic.Int64
	ProviderErrors   atomic.Int64
	TimeoutErrors    atomic.Int64
	NetworkErrors    atomic.Int64
	StatusErrors     atomic.Int64
	MalformedErrors  atomic.Int64
	InternalErrors   atomic.Int64
	RegistryErrors   atomic.Int64
	UnknownSites     atomic.Int64
}

var metricKeys = []string{
	"search_requests", "category_requests", "detail_requests", "hot_requests",
	"latency_probes",
	"provider_fetches", "provider_errors",
	"timeout_errors", "network_errors", "status_errors", "malformed_errors", "internal_errors",
	"registry_errors", "unknown_sites",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests":   metrics.SearchRequests.Load(),
		"category_requests": metrics.CategoryRequests.Load(),
		"detail_requests":   metrics.DetailRequests.Load(),
		"hot_requests":      metrics.HotRequests.Load(),
		"latency_probes":    metrics.LatencyProbes.Load(),
		"provider_fetches":  metrics.ProviderFetches.Load(),
		"provider_errors":   metrics.ProviderErrors.Load(),
		"timeout_errors":    metrics.TimeoutErrors.Load(),
		"network_errors":    metrics.NetworkErrors.Load(),
		"status_errors":     metrics.StatusErrors.Load(),
		"malformed_errors":  metrics.MalformedErrors.Load(),
		"internal_errors":   metrics.InternalErrors.Load(),
		"registry_errors":   metrics.RegistryErrors.Load(),
		"unknown_sites":     metrics.UnknownSites.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// countFetchError bumps the error counters for err. Registry and lookup
// failures are not provider errors.
func countFetchError(err error) {
	kind := FetchErrorKind(err)
	switch kind {
	case KindRegistry:
		metrics.RegistryErrors.Add(1)
		return
	case KindUnknownProvider:
		metrics.UnknownSites.Add(1)
		return
	}
	metrics.ProviderErrors.Add(1)
	switch kind {
	case KindTimeout:
		metrics.TimeoutErrors.Add(1)
	case KindStatus:
		metrics.StatusErrors.Add(1)
	case KindMalformed:
		metrics.MalformedErrors.Add(1)
	case KindInternal:
		metrics.InternalErrors.Add(1)
	default:
		metrics.NetworkErrors.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context)) {
	start := time.Now()
	fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
}
