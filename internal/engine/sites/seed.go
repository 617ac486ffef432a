package sites

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_vod/internal/engine"
)

// seedFile is the YAML layout of a sites file:
//
//	sites:
//	  - key: ffzy
//	    name: 非凡资源
//	    api: https://cj.ffzyapi.com/api.php/provide/vod/
//	    active: true
type seedFile struct {
	Sites []seedSite `yaml:"sites"`
}

type seedSite struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	API    string `yaml:"api"`
	Active *bool  `yaml:"active"` // omitted means active
}

// ParseYAML decodes a sites file. Unknown fields are rejected.
func ParseYAML(data []byte) ([]engine.Provider, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse sites yaml: %w", err)
	}
	out := make([]engine.Provider, 0, len(f.Sites))
	for _, s := range f.Sites {
		p := engine.Provider{Key: s.Key, Name: s.Name, API: s.API, Active: true}
		if s.Active != nil {
			p.Active = *s.Active
		}
		if p.Name == "" {
			p.Name = p.Key
		}
		out = append(out, p)
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadYAML reads and parses a sites file.
func LoadYAML(path string) ([]engine.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	return ParseYAML(data)
}

// SeedIfEmpty loads path into store when the store has no sites yet.
// It reports whether the store was seeded.
func SeedIfEmpty(ctx context.Context, store Store, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	existing, err := store.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		slog.Debug("sites already present, skipping seed", slog.Int("count", len(existing)))
		return false, nil
	}
	list, err := LoadYAML(path)
	if err != nil {
		return false, err
	}
	if err := store.Replace(ctx, list); err != nil {
		return false, fmt.Errorf("seed sites: %w", err)
	}
	slog.Info("sites seeded", slog.String("file", path), slog.Int("count", len(list)))
	return true, nil
}
