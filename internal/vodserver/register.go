// Package vodserver exposes the aggregator and the site registry as MCP tools.
package vodserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/engine/sites"
)

// Deps are the collaborators shared by all tools.
type Deps struct {
	Aggregator *engine.Aggregator
	Store      sites.Store
	AdminToken string // empty disables vod_sites_replace
}

// RegisterTools registers the video tools on the given MCP server:
// vod_search, vod_category, vod_detail, vod_hot, vod_check, vod_sites
// and, when an admin token is configured, vod_sites_replace.
func RegisterTools(server *mcp.Server, d Deps) {
	registerSearch(server, d.Aggregator)
	registerCategory(server, d.Aggregator)
	registerDetail(server, d.Aggregator)
	registerHot(server, d.Aggregator)
	registerCheck(server, d.Aggregator)
	registerSitesList(server, d.Store)
	if d.AdminToken != "" {
		registerSitesReplace(server, d.Store, d.AdminToken)
	}
}
