package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JNZader/eslintsync/internal/codacy"
	"github.com/JNZader/eslintsync/internal/config"
	"github.com/JNZader/eslintsync/internal/diag"
	"github.com/JNZader/eslintsync/internal/eslint"
	"github.com/JNZader/eslintsync/internal/history"
	"github.com/JNZader/eslintsync/internal/logger"
	"github.com/JNZader/eslintsync/internal/report"
	"github.com/JNZader/eslintsync/internal/standard"
)

func newCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a coding standard from an ESLint configuration",
		Long: `Create a new Codacy coding standard that enables exactly the ESLint rules
of a local configuration.

The command creates the standard, disables every tool in it, enables the
ESLint tool with the matching patterns (all other ESLint patterns are
disabled) and promotes the standard to the organization default.
Each run creates a new standard.

The API token is best passed through the CODACY_API_TOKEN environment
variable.

Examples:
  eslintsync create --organization acme --provider gh \
    --name "Frontend Standard" --eslint-config .eslintrc.js

  # Keep the current default standard
  eslintsync create ... --no-promote`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd)
		},
	}

	f := cmd.Flags()
	f.String("api-token", "", "Codacy API token")
	f.String("organization", "", "organization name on the git provider")
	f.String("provider", "", "git provider (gh, gl, bb)")
	f.String("name", "", "name of the coding standard")
	f.String("eslint-config", "", "path to the ESLint configuration")
	f.String("base-url", "", "Codacy API base URL")
	f.Int("batch-size", 0, "patterns per update request")
	f.Int("page-size", 0, "catalog page size")
	f.String("output-dir", "", "directory of the result file")
	f.StringP("format", "f", "", "result file format (json, yaml, markdown)")
	f.Bool("no-promote", false, "do not promote the standard to the organization default")
	f.Bool("metrics", false, "print request metrics when done")
	return cmd
}

// applyCreateFlags copies explicitly set flags over the loaded config.
func applyCreateFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	setString := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	setInt := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}

	setString("api-token", &cfg.Codacy.APIToken)
	setString("organization", &cfg.Codacy.Organization)
	setString("provider", &cfg.Codacy.Provider)
	setString("base-url", &cfg.Codacy.BaseURL)
	setString("name", &cfg.Standard.Name)
	setString("eslint-config", &cfg.Standard.ESLintConfig)
	setInt("batch-size", &cfg.Sync.BatchSize)
	setInt("page-size", &cfg.Sync.PageSize)
	setString("output-dir", &cfg.Output.Dir)
	setString("format", &cfg.Output.Format)

	if noPromote, _ := f.GetBool("no-promote"); noPromote {
		cfg.Standard.Promote = false
	}
	if withMetrics, _ := f.GetBool("metrics"); withMetrics {
		cfg.Output.Metrics = true
	}
}

func (a *app) runCreate(cmd *cobra.Command) error {
	cfg := a.cfg
	applyCreateFlags(cmd, cfg)
	a.log.RegisterSecret(cfg.Codacy.APIToken)

	// Input errors abort before anything is sent
	if err := cfg.Validate(); err != nil {
		return err
	}
	reporter, err := report.NewReporter(cfg.Output.Format)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := a.log.WithFields(map[string]interface{}{
		"run_id":       runID,
		"organization": cfg.Codacy.Organization,
	})

	patterns, diags, err := loadPatterns(cfg.Standard.ESLintConfig)
	log.Diagnostics(diags)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		return fmt.Errorf("%s: %w", cfg.Standard.ESLintConfig, standard.ErrNoPatterns)
	}
	log.Info("found %d enabled rules in %s", len(patterns), cfg.Standard.ESLintConfig)

	client, err := newClient(cfg, log, a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress standard.Progress = noProgress{}
	if !a.quiet {
		progress = NewProgressReporter(cmd.ErrOrStderr())
	}
	api, closeCache := withCatalogCache(client, cfg.State, log)
	defer closeCache()

	syncer := standard.New(api, standard.Options{
		ToolUUID:      cfg.Sync.ToolUUID,
		PatternPrefix: cfg.Sync.PatternPrefix,
		Languages:     cfg.Standard.Languages,
		BatchSize:     cfg.Sync.BatchSize,
		PageSize:      cfg.Sync.PageSize,
		Promote:       cfg.Standard.Promote,
	},
		standard.WithLogger(log.WithPrefix("sync")),
		standard.WithMetrics(a.metrics),
		standard.WithProgress(progress),
	)

	started := time.Now()
	result, err := syncer.Run(ctx, standard.Request{
		Name:         cfg.Standard.Name,
		Organization: cfg.Codacy.Organization,
		Provider:     cfg.Codacy.Provider,
		Patterns:     patterns,
	})
	if result != nil {
		log.Diagnostics(result.Diagnostics)
	}
	if cfg.State.History {
		a.recordRun(context.WithoutCancel(ctx), log, newRun(runID, cfg, result, err, started))
	}
	if err != nil {
		return err
	}

	path, err := report.WriteFile(reporter, result, cfg.Output.Dir)
	if err != nil {
		return err
	}

	if !a.quiet {
		PrintSummary(cmd.OutOrStdout(), result, path)
	}
	if cfg.Output.Metrics {
		return writeMetrics(cmd.ErrOrStderr(), a.metrics, cfg.Output.Format)
	}
	return nil
}

// loadPatterns reads, normalizes and translates an ESLint configuration.
func loadPatterns(path string) ([]eslint.Pattern, diag.List, error) {
	parsed, diags, err := eslint.ReadRules(path, nil)
	if err != nil {
		return nil, diags, err
	}
	patterns, translated := eslint.TranslateAll(parsed.Rules)
	diags.Merge(translated)
	return patterns, diags, nil
}

func newClient(cfg *config.Config, log *logger.Logger, a *app) (*codacy.Client, error) {
	return codacy.NewClient(codacy.Config{
		BaseURL:      cfg.Codacy.BaseURL,
		APIToken:     cfg.Codacy.APIToken,
		Provider:     cfg.Codacy.Provider,
		Organization: cfg.Codacy.Organization,
		Timeout:      cfg.Codacy.Timeout,
		RateLimitRPS: cfg.Codacy.RateLimitRPS,
	},
		codacy.WithLogger(log.WithPrefix("codacy")),
		codacy.WithMetrics(a.metrics),
		codacy.WithRetryConfig(codacy.RetryConfig{
			MaxAttempts: cfg.Sync.MaxAttempts,
			Delay:       cfg.Sync.RetryDelay,
		}),
	)
}

// newRun builds the history entry of a create run. result may be nil when
// the standard was never created.
func newRun(runID string, cfg *config.Config, result *standard.Result, err error, started time.Time) *history.Run {
	run := &history.Run{
		RunID:        runID,
		Name:         cfg.Standard.Name,
		Organization: cfg.Codacy.Organization,
		Provider:     cfg.Codacy.Provider,
		Source:       cfg.Standard.ESLintConfig,
		Status:       history.StatusSucceeded,
		CreatedAt:    started,
		Duration:     time.Since(started),
	}
	if result != nil {
		run.StandardID = result.StandardID
		run.PatternsCount = result.PatternsCount
		run.Enabled = result.Enabled
		run.Disabled = result.Disabled
		run.Unmatched = len(result.UnmatchedRules)
		run.Promoted = result.Promoted
	}
	if err != nil {
		run.Status = history.StatusFailed
		run.Error = err.Error()
	}
	return run
}

// recordRun stores a run in the history database. Failures only warn.
func (a *app) recordRun(ctx context.Context, log *logger.Logger, run *history.Run) {
	store, err := openHistory(a.cfg.State)
	if err != nil {
		log.Warn("run history disabled: %v", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		log.Warn("recording run: %v", err)
		return
	}
	log.Debug("recorded run %d", run.ID)
}

// noProgress is used in quiet mode.
type noProgress struct{}

func (noProgress) Step(string) {}

func (noProgress) Batch(string, int, int, int) {}

func (noProgress) Finish() {}

var _ standard.Progress = noProgress{}
