// Command vodctl queries the video aggregator and manages the site registry
// from the command line. Configuration comes from the same environment
// variables as the MCP server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_vod/internal/bootstrap"
	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/engine/sites"
)

var version = "dev"

// app holds what the subcommands share. Opened lazily by the root command.
type app struct {
	store sites.Store
	agg   *engine.Aggregator
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "vodctl",
		Short: "Video metadata aggregator CLI",
		Long: `vodctl fans a query out across the registered video sites and prints
the merged result as JSON.

Examples:
  vodctl search 流浪地球
  vodctl category --type 2 --page 3
  vodctl detail ffzy 12345
  vodctl hot
  vodctl check ffzy
  vodctl sites import sites.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			bootstrap.InitLogger()
			store, err := bootstrap.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			cfg := bootstrap.EngineConfig()
			a.store = store
			a.agg = engine.New(cfg, store, bootstrap.Transport(cfg))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.store != nil {
				a.store.Close()
			}
		},
	}

	root.AddCommand(
		searchCmd(a),
		categoryCmd(a),
		detailCmd(a),
		hotCmd(a),
		checkCmd(a),
		sitesCmd(a),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
