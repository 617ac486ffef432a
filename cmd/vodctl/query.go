package main

import (
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_vod/internal/engine"
	"github.com/anatolykoptev/go_vod/internal/toolutil"
)

func searchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search every active site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.agg.Search(cmd.Context(), args[0])
			return printJSON(cmd.OutOrStdout(), toolutil.List(items))
		},
	}
}

func categoryCmd(a *app) *cobra.Command {
	var typ, page int
	cmd := &cobra.Command{
		Use:   "category",
		Short: "List a category page, deduplicated by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := a.agg.Category(cmd.Context(), typ, toolutil.NormPage(page))
			return printJSON(cmd.OutOrStdout(), toolutil.List(items))
		},
	}
	cmd.Flags().IntVarP(&typ, "type", "t", 1, "category id (1=Movie, 2=TV, 3=Variety, 4=Anime)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func detailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <site_key> <id>",
		Short: "Fetch one video's detail record from one site",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.agg.Detail(cmd.Context(), toolutil.NormKey(args[0]), toolutil.NormKey(args[1]))
			return printJSON(cmd.OutOrStdout(), toolutil.List(items))
		},
	}
}

func hotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hot",
		Short: "Recently updated videos from the first responsive hot site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), toolutil.List(a.agg.Hot(cmd.Context())))
		},
	}
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <site_key>",
		Short: "Measure latency to one site in ms (9999 = unreachable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms := a.agg.CheckLatency(cmd.Context(), toolutil.NormKey(args[0]))
			return printJSON(cmd.OutOrStdout(), engine.CheckOutput{Latency: ms})
		},
	}
}
