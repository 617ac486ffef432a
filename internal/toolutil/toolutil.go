// Package toolutil provides shared helpers for go_vod MCP tools and the CLI.
package toolutil

import (
	"crypto/subtle"
	"strings"

	"github.com/anatolykoptev/go_vod/internal/engine"
)

// NormPage normalises a page field: anything below 1 → 1.
func NormPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormKey trims whitespace around a site key or id.
func NormKey(s string) string {
	return strings.TrimSpace(s)
}

// List wraps items as a tool result. Never returns a nil list.
func List(items []engine.Item) engine.ListOutput {
	if items == nil {
		items = []engine.Item{}
	}
	return engine.ListOutput{List: items}
}

// TokenMatches compares a presented admin token in constant time.
// An empty expected token never matches.
func TokenMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
