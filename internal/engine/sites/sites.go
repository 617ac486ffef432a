// Package sites stores the provider registry in Postgres or SQLite.
package sites

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_vod/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Store is the provider registry with the admin write side.
type Store interface {
	engine.Registry
	// List returns every site, active or not, in registry order.
	List(ctx context.Context) ([]engine.Provider, error)
	// Replace atomically swaps the whole site list. Slice order becomes registry order.
	Replace(ctx context.Context, sites []engine.Provider) error
	Close()
}

// Options selects the backing database.
type Options struct {
	DatabaseURL string // Postgres; takes precedence when set
	SQLitePath  string
}

// Open connects to Postgres when DatabaseURL is set, otherwise opens SQLite.
func Open(ctx context.Context, o Options) (Store, error) {
	if o.DatabaseURL != "" {
		s, err := ConnectPostgres(ctx, o.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := OpenSQLite(o.SQLitePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks a replacement site list.
func Validate(sites []engine.Provider) error {
	seen := make(map[string]bool, len(sites))
	var errs []error
	for i, s := range sites {
		switch {
		case strings.TrimSpace(s.Key) == "":
			errs = append(errs, fmt.Errorf("site %d: key is required", i))
			continue
		case seen[s.Key]:
			errs = append(errs, fmt.Errorf("site %q: duplicate key", s.Key))
		case strings.TrimSpace(s.Name) == "":
			errs = append(errs, fmt.Errorf("site %q: name is required", s.Key))
		}
		seen[s.Key] = true
		if err := validateAPI(s.API); err != nil {
			errs = append(errs, fmt.Errorf("site %q: %w", s.Key, err))
		}
	}
	return errors.Join(errs...)
}

func validateAPI(api string) error {
	u, err := url.Parse(api)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api url must be http(s), got %q", api)
	}
	if u.Host == "" {
		return fmt.Errorf("api url has no host: %q", api)
	}
	return nil
}
