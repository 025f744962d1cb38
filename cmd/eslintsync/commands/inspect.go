package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JNZader/eslintsync/internal/config"
	"github.com/JNZader/eslintsync/internal/diag"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/report"
	"github.com/JNZader/eslintsync/internal/standard"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show how an ESLint configuration converts, without calling Codacy",
		Long: `Normalize and translate an ESLint configuration and print the resulting
patterns with every diagnostic raised on the way. Nothing is sent to Codacy.

With --match the patterns are also resolved against the ESLint catalog
cached by the last "create" or "catalog" run.

Examples:
  eslintsync inspect --eslint-config .eslintrc.js
  eslintsync inspect --eslint-config .eslintrc.js --format markdown
  eslintsync inspect --eslint-config .eslintrc.js --match`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd)
		},
	}
	cmd.Flags().String("eslint-config", "", "path to the ESLint configuration")
	cmd.Flags().StringP("format", "f", "", "output format (json, yaml, markdown)")
	cmd.Flags().Bool("match", false, "resolve patterns against the cached catalog")
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command) error {
	cfg := a.cfg
	if cmd.Flags().Changed("eslint-config") {
		cfg.Standard.ESLintConfig, _ = cmd.Flags().GetString("eslint-config")
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format, _ = cmd.Flags().GetString("format")
	}
	if err := cfg.ValidateLocal(); err != nil {
		return err
	}
	reporter, err := report.NewReporter(cfg.Output.Format)
	if err != nil {
		return err
	}

	parsed, diags, err := eslint.ReadRules(cfg.Standard.ESLintConfig, nil)
	if err != nil {
		return err
	}
	patterns, translated := eslint.TranslateAll(parsed.Rules)
	diags.Merge(translated)
	if a.isVerbose() {
		a.log.Diagnostics(diags.AtLeast(diag.SeverityInfo))
	}

	in := &report.Inspection{
		Source:     cfg.Standard.ESLintConfig,
		RulesCount: len(parsed.Rules),
		Patterns:   patterns,
	}
	if match, _ := cmd.Flags().GetBool("match"); match {
		m, matchDiags, err := matchCachedCatalog(cfg, patterns)
		if err != nil {
			return err
		}
		in.Match = m
		diags.Merge(matchDiags)
	}
	in.Diagnostics = diags

	return reporter.WriteInspection(in, cmd.OutOrStdout())
}

// matchCachedCatalog reconciles patterns with the cached catalog of the
// configured tool.
func matchCachedCatalog(cfg *config.Config, patterns []eslint.Pattern) (*report.CatalogMatch, diag.List, error) {
	c, err := openCatalogCache(cfg.State)
	if err != nil {
		return nil, nil, err
	}
	defer c.Close()

	entry, err := c.Get(cfg.Sync.ToolUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w; run \"eslintsync catalog\" first", err)
	}

	plan := standard.Reconcile(entry.Patterns, patterns, cfg.Sync.PatternPrefix)
	return &report.CatalogMatch{
		FetchedAt:   entry.FetchedAt,
		CatalogSize: len(entry.Patterns),
		Matched:     len(plan.Enable),
		Unmatched:   plan.Unmatched,
	}, plan.Diagnostics, nil
}
