// go_vod: video metadata aggregator MCP server.
//
// Fans out search, category, detail, hot and latency queries across a
// registry of video provider APIs and merges the results. The registry lives
// in Postgres (DATABASE_URL) or a local SQLite file.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_vod/internal/bootstrap"
	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/vodserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8891")
)

func main() {
	bootstrap.InitLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := bootstrap.OpenStore(ctx)
	cancel()
	if err != nil {
		slog.Error("sites store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	cfg := bootstrap.EngineConfig()
	agg := engine.New(cfg, store, bootstrap.Transport(cfg))

	slog.Info("starting go_vod",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_vod",
		Version: version,
	}, nil)

	adminToken := env.Str("ADMIN_TOKEN", "")
	vodserver.RegisterTools(server, vodserver.Deps{
		Aggregator: agg,
		Store:      store,
		AdminToken: adminToken,
	})
	slog.Info("tools registered", slog.Bool("admin", adminToken != ""))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_vod",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 60 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
