package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator runs the logical operations over the provider registry.
// No operation returns an error: failures degrade to empty or partial lists.
type Aggregator struct {
	cfg      Config
	registry Registry
	client   *Client
}

// New creates an Aggregator. Zero Config fields take DefaultConfig values.
func New(c Config, reg Registry, t Transport) *Aggregator {
	return &Aggregator{cfg: c.withDefaults(), registry: reg, client: NewClient(t)}
}

// Search queries every active provider for wd and concatenates the results
// in provider order. Duplicates are kept.
func (a *Aggregator) Search(ctx context.Context, wd string) (out []Item) {
	out = []Item{}
	if wd == "" {
		return out
	}
	metrics.SearchRequests.Add(1)
	defer recoverOp("search", &out)

	sites := AllActive(a.snapshot(ctx, "search"))
	params := ListParams{Keyword: wd, Page: 1}

	TrackOperation(ctx, "search", a.cfg.SearchTimeout+time.Second, func(ctx context.Context) {
		for _, r := range a.fanOut(ctx, sites, params, a.cfg.SearchTimeout) {
			out = append(out, r.Items...)
		}
	})
	slog.Debug("search complete", slog.String("wd", wd), slog.Int("sites", len(sites)), slog.Int("items", len(out)))
	return out
}

// Category lists one category page from the first CategorySites active
// providers, deduplicated by vod_name and truncated to CategoryLimit.
func (a *Aggregator) Category(ctx context.Context, typeID, page int) (out []Item) {
	out = []Item{}
	metrics.CategoryRequests.Add(1)
	defer recoverOp("category", &out)

	if page < 1 {
		page = 1
	}
	sites := Capped(a.snapshot(ctx, "category"), a.cfg.CategorySites)
	params := ListParams{Type: typeID, Page: page}

	var merged []Item
	for _, r := range a.fanOut(ctx, sites, params, a.cfg.CategoryTimeout) {
		merged = append(merged, r.Items...)
	}
	out = DedupByName(merged, a.cfg.CategoryLimit)
	slog.Debug("category complete", slog.Int("type", typeID), slog.Int("page", page),
		slog.Int("sites", len(sites)), slog.Int("merged", len(merged)), slog.Int("items", len(out)))
	return out
}

// Detail fetches one video from one provider. Items are returned as-is,
// without provenance fields.
func (a *Aggregator) Detail(ctx context.Context, siteKey, id string) (out []Item) {
	out = []Item{}
	metrics.DetailRequests.Add(1)
	defer recoverOp("detail", &out)

	p, err := a.lookup(ctx, siteKey)
	if err != nil {
		return out
	}
	r := a.client.FetchList(ctx, p, ListParams{Action: "detail", IDs: id, NoStamp: true}, a.cfg.DetailTimeout)
	if r.Err != nil {
		return out
	}
	return r.Items
}

// Hot walks the allow-listed providers in order and returns the first
// non-empty recent list, truncated to HotLimit. Later providers are not queried.
func (a *Aggregator) Hot(ctx context.Context) (out []Item) {
	out = []Item{}
	metrics.HotRequests.Add(1)
	defer recoverOp("hot", &out)

	sites := FixedKeys(a.snapshot(ctx, "hot"), a.cfg.HotSites)
	params := ListParams{Page: 1, Hours: a.cfg.HotHours}
	for _, p := range sites {
		if ctx.Err() != nil {
			break
		}
		r := a.client.FetchList(ctx, p, params, a.cfg.HotTimeout)
		if len(r.Items) == 0 {
			continue
		}
		items := r.Items
		if len(items) > a.cfg.HotLimit {
			items = items[:a.cfg.HotLimit]
		}
		slog.Debug("hot served", slog.String("site", p.Key), slog.Int("items", len(items)))
		return items
	}
	return out
}

// fanOut calls FetchList once per provider and returns results in provider
// order. Each task owns exactly one slot of the result slice.
func (a *Aggregator) fanOut(ctx context.Context, sites []Provider, params ListParams, timeout time.Duration) []FetchResult {
	results := make([]FetchResult, len(sites))
	var g errgroup.Group
	if a.cfg.MaxParallel > 0 {
		g.SetLimit(a.cfg.MaxParallel)
	}
	for i, p := range sites {
		g.Go(func() error {
			results[i] = a.client.FetchList(ctx, p, params, timeout)
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Provider.Key)
		}
	}
	if len(failed) > 0 {
		slog.Debug("fan-out partial", slog.Int("sites", len(sites)), slog.Any("failed", failed))
	}
	return results
}

// snapshot reads the active providers; registry failures yield none.
func (a *Aggregator) snapshot(ctx context.Context, op string) []Provider {
	sites, err := a.registry.ListActive(ctx)
	if err != nil {
		fe := &FetchError{Kind: KindRegistry, Err: err}
		countFetchError(fe)
		slog.Warn("registry list failed", slog.String("op", op), slog.Any("error", fe))
		return nil
	}
	return sites
}

// lookup resolves one provider by key. Failures are a *FetchError of kind
// unknown_provider or registry, already logged and counted.
func (a *Aggregator) lookup(ctx context.Context, key string) (Provider, error) {
	if key == "" {
		fe := &FetchError{Kind: KindUnknownProvider}
		countFetchError(fe)
		return Provider{}, fe
	}
	p, ok, err := a.registry.Get(ctx, key)
	if err != nil {
		fe := &FetchError{Site: key, Kind: KindRegistry, Err: err}
		countFetchError(fe)
		slog.Warn("registry get failed", slog.Any("error", fe))
		return Provider{}, fe
	}
	if !ok {
		fe := &FetchError{Site: key, Kind: KindUnknownProvider}
		countFetchError(fe)
		slog.Debug("unknown site", slog.Any("error", fe))
		return Provider{}, fe
	}
	return p, nil
}

// recoverOp turns a panic inside an operation into an empty result.
func recoverOp(op string, out *[]Item) {
	if r := recover(); r != nil {
		slog.Error("operation panicked", slog.String("op", op), slog.Any("error", fmt.Errorf("%v", r)))
		*out = []Item{}
	}
}
