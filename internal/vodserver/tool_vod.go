package vodserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/toolutil"
)

func registerSearch(server *mcp.Server, agg *engine.Aggregator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_search",
		Description: "Search every active video site for a keyword. Results from all sites are concatenated in registry order, each tagged with site_key and site_name. Sites that fail or time out are skipped.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SearchInput) (*mcp.CallToolResult, engine.ListOutput, error) {
		return nil, toolutil.List(agg.Search(ctx, input.Keyword)), nil
	})
}

func registerCategory(server *mcp.Server, agg *engine.Aggregator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_category",
		Description: "List one page of a category from the first few active sites. Items are deduplicated by vod_name (first occurrence wins) and capped at 20.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.CategoryInput) (*mcp.CallToolResult, engine.ListOutput, error) {
		return nil, toolutil.List(agg.Category(ctx, input.Type, toolutil.NormPage(input.Page))), nil
	})
}

func registerDetail(server *mcp.Server, agg *engine.Aggregator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_detail",
		Description: "Fetch the detail record (play URLs, synopsis) of one video from one site. Get site_key and id (vod_id) from vod_search or vod_category. Returns an empty list when the site is unknown or unreachable.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.DetailInput) (*mcp.CallToolResult, engine.ListOutput, error) {
		items := agg.Detail(ctx, toolutil.NormKey(input.SiteKey), toolutil.NormKey(input.ID))
		return nil, toolutil.List(items), nil
	})
}

func registerHot(server *mcp.Server, agg *engine.Aggregator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_hot",
		Description: "Recently updated videos from the first responsive site of the hot allow-list, capped at 12.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ engine.HotInput) (*mcp.CallToolResult, engine.ListOutput, error) {
		return nil, toolutil.List(agg.Hot(ctx)), nil
	})
}

func registerCheck(server *mcp.Server, agg *engine.Aggregator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vod_check",
		Description: "Measure round-trip latency to one site in milliseconds. 9999 means unknown site, timeout or error.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.CheckInput) (*mcp.CallToolResult, engine.CheckOutput, error) {
		return nil, engine.CheckOutput{Latency: agg.CheckLatency(ctx, toolutil.NormKey(input.Key))}, nil
	})
}
