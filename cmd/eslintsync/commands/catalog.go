package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the tools and ESLint patterns of an existing coding standard",
		Long: `List the tools of a coding standard and the full ESLint pattern catalog,
draining every page. Useful to check why a rule has no catalog match.
The catalog is cached locally for "inspect --match".

Examples:
  eslintsync catalog --organization acme --provider gh --standard-id 1234
  eslintsync catalog --standard-id 1234 --enabled-only
  eslintsync catalog clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCatalog(cmd)
		},
	}
	f := cmd.Flags()
	f.Int64("standard-id", 0, "coding standard id")
	f.String("api-token", "", "Codacy API token")
	f.String("organization", "", "organization name on the git provider")
	f.String("provider", "", "git provider (gh, gl, bb)")
	f.String("base-url", "", "Codacy API base URL")
	f.Bool("enabled-only", false, "list only enabled patterns")
	_ = cmd.MarkFlagRequired("standard-id")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the locally cached catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCatalogCache(a.cfg.State)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing catalog cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Catalog cache cleared")
			return nil
		},
	})
	return cmd
}

func (a *app) runCatalog(cmd *cobra.Command) error {
	cfg := a.cfg
	f := cmd.Flags()
	for flag, dst := range map[string]*string{
		"api-token":    &cfg.Codacy.APIToken,
		"organization": &cfg.Codacy.Organization,
		"provider":     &cfg.Codacy.Provider,
		"base-url":     &cfg.Codacy.BaseURL,
	} {
		if f.Changed(flag) {
			*dst, _ = f.GetString(flag)
		}
	}
	a.log.RegisterSecret(cfg.Codacy.APIToken)
	if err := cfg.ValidateRemote(); err != nil {
		return err
	}

	standardID, _ := f.GetInt64("standard-id")
	enabledOnly, _ := f.GetBool("enabled-only")

	client, err := newClient(cfg, a.log, a)
	if err != nil {
		return err
	}

	api, closeCache := withCatalogCache(client, cfg.State, a.log)
	defer closeCache()

	ctx := cmd.Context()
	tools, err := api.ListTools(ctx, standardID)
	if err != nil {
		return err
	}
	patterns, err := api.ListPatterns(ctx, standardID, cfg.Sync.ToolUUID, cfg.Sync.PageSize)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tools (%d):\n", len(tools))
	for _, tool := range tools {
		state := "disabled"
		if tool.IsEnabled {
			state = "enabled"
		}
		fmt.Fprintf(out, "  %s  %s\n", tool.UUID, state)
	}

	fmt.Fprintf(out, "\nESLint patterns (%d):\n", len(patterns))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range patterns {
		if enabledOnly && !p.Enabled {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%t\t%s\t%s\n", p.PatternDefinition.ID, p.Enabled, p.PatternDefinition.Category, p.PatternDefinition.Level)
	}
	return tw.Flush()
}
