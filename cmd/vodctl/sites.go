package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go_vod/internal/engine/sites"
)

func sitesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "Inspect and replace the site registry",
		Long: `Inspect and replace the site registry.

Examples:
  vodctl sites list                 # JSON, query order
  vodctl sites export > sites.yaml  # YAML, same format import reads
  vodctl sites import sites.yaml    # replace the whole registry`,
	}
	cmd.AddCommand(sitesListCmd(a), sitesExportCmd(a), sitesImportCmd(a))
	return cmd
}

func sitesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all sites, active or not",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
}

func sitesExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the registry as a YAML sites file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(map[string]any{"sites": list}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func sitesImportCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Replace the whole registry with a YAML sites file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := sites.LoadYAML(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d sites valid, registry unchanged\n", len(list))
				return nil
			}
			if err := a.store.Replace(cmd.Context(), list); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sites\n", len(list))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	return cmd
}
