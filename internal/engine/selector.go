package engine

// AllActive returns the active providers of a registry snapshot, in order.
func AllActive(snapshot []Provider) []Provider {
	out := make([]Provider, 0, len(snapshot))
	for _, p := range snapshot {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Capped returns the first n active providers in registry order.
func Capped(snapshot []Provider, n int) []Provider {
	active := AllActive(snapshot)
	if n >= 0 && len(active) > n {
		active = active[:n]
	}
	return active
}

// FixedKeys returns active providers whose keys appear in keys, ordered by keys.
// A key listed twice selects its provider once.
func FixedKeys(snapshot []Provider, keys []string) []Provider {
	byKey := make(map[string]Provider, len(snapshot))
	for _, p := range snapshot {
		if !p.Active {
			continue
		}
		if _, dup := byKey[p.Key]; !dup {
			byKey[p.Key] = p
		}
	}
	out := make([]Provider, 0, len(keys))
	for _, k := range keys {
		if p, ok := byKey[k]; ok {
			out = append(out, p)
			delete(byKey, k)
		}
	}
	return out
}
