package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Keys that may hold the item array, in lookup order.
var listKeys = []string{"list", "data"}

var (
	errNoList       = errors.New("no item list in response")
	errTrailingData = errors.New("trailing data after json value")
)

// ExtractItems pulls the item array out of a provider response.
// Malformed input yields an empty slice, never an error.
func ExtractItems(raw []byte) []Item {
	items, _ := parseItems(raw)
	return items
}

// parseItems is ExtractItems with the reason for an empty result.
// The first truthy list key wins; falsy values fall through to the next key.
func parseItems(raw []byte) ([]Item, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	// PHP warnings after the JSON make the whole body invalid.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode response: %w", errTrailingData)
	}
	if body == nil {
		return nil, errNoList
	}

	for _, key := range listKeys {
		v, ok := body[key]
		if !ok || !truthy(v) {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%q is %T, not an array", key, v)
		}
		items := make([]Item, 0, len(arr))
		for _, el := range arr {
			if obj, ok := el.(map[string]any); ok {
				items = append(items, Item(obj))
			}
		}
		if dropped := len(arr) - len(items); dropped > 0 {
			slog.Debug("non-object items dropped", slog.String("key", key), slog.Int("dropped", dropped))
		}
		return items, nil
	}
	return []Item{}, nil
}

// truthy mirrors loose JSON truthiness: null, false, 0, "" and [] are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	}
	return true
}

// stamp overwrites provenance fields on each item in place.
func stamp(items []Item, p Provider) {
	for _, it := range items {
		it[FieldSiteKey] = p.Key
		it[FieldSiteName] = p.Name
	}
}

// nameKey returns the dedup key for an item's vod_name.
// Missing, empty and non-scalar names report false.
func nameKey(it Item) (string, bool) {
	switch v := it[FieldVodName].(type) {
	case string:
		if v == "" {
			return "", false
		}
		return "s:" + v, true
	case json.Number:
		if !truthy(v) {
			return "", false
		}
		return "n:" + v.String(), true
	}
	return "", false
}

// DedupByName keeps the first item for each distinct vod_name, drops items
// without one, and truncates to limit (0 = no limit).
func DedupByName(items []Item, limit int) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		k, ok := nameKey(it)
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
