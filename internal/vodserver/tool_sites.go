package vodserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/engine/sites"
	"github.com/anatolykoptev/go_vod/internal/toolutil"
)

// SitesListInput is the input for vod_sites.
type SitesListInput struct{}

// SitesOutput is the output for vod_sites.
type SitesOutput struct {
	Sites []engine.Provider `json:"sites"`
	Total int               `json:"total"`
}

// SitesReplaceInput is the input for vod_sites_replace.
type SitesReplaceInput struct {
	Token string            `json:"token" jsonschema:"Admin token"`
	Sites []engine.Provider `json:"sites" jsonschema:"Complete new site list, in query order"`
}

// SitesReplaceResult is the output for vod_sites_replace.
type SitesReplaceResult struct {
	Total   int    `json:"total"`
	Message string `json:"message"`
}

var errUnauthorized = errors.New("invalid admin token")

func registerSitesList(server *mcp.Server, store sites.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_sites",
		Description: "List all registered video sites, active or not, in query order.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ SitesListInput) (*mcp.CallToolResult, *SitesOutput, error) {
		list, err := store.List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("list sites: %w", err)
		}
		if list == nil {
			list = []engine.Provider{}
		}
		return nil, &SitesOutput{Sites: list, Total: len(list)}, nil
	})
}

func registerSitesReplace(server *mcp.Server, store sites.Store, adminToken string) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_sites_replace",
		Description: "Atomically replace the whole site registry. Requires the admin token. The order of sites is the order they are queried in.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SitesReplaceInput) (*mcp.CallToolResult, *SitesReplaceResult, error) {
		if !toolutil.TokenMatches(input.Token, adminToken) {
			slog.Warn("vod_sites_replace: rejected token")
			return nil, nil, errUnauthorized
		}
		if err := store.Replace(ctx, input.Sites); err != nil {
			return nil, nil, err
		}
		return nil, &SitesReplaceResult{
			Total:   len(input.Sites),
			Message: fmt.Sprintf("registry replaced with %d sites", len(input.Sites)),
		}, nil
	})
}
