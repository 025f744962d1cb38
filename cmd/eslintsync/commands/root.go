// Package commands contains all CLI commands for eslintsync.
//
// This package uses the Cobra library for CLI management. Commands are built
// by constructor functions so every invocation starts from fresh flag state.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JNZader/eslintsync/internal/config"
	"github.com/JNZader/eslintsync/internal/logger"
	"github.com/JNZader/eslintsync/internal/metrics"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	// cfgFile holds the path to the config file (from --config flag)
	cfgFile string

	// verbose enables detailed output
	verbose bool

	// quiet suppresses all output except errors
	quiet bool

	cfg        *config.Config
	configUsed string
	log        *logger.Logger
	metrics    *metrics.Collector
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "eslintsync",
		Short: "Sync an ESLint configuration into a Codacy coding standard",
		Long: `eslintsync reads a local ESLint configuration, converts its rules into
Codacy patterns and creates a coding standard that enables exactly those
patterns for the ESLint tool.

Examples:
  # Create and promote a coding standard
  eslintsync create --organization acme --provider gh \
    --name "Frontend Standard" --eslint-config .eslintrc.js

  # Check how a configuration converts, without calling Codacy
  eslintsync inspect --eslint-config .eslintrc.js

  # Show the ESLint catalog of an existing standard
  eslintsync catalog --standard-id 1234`,

		// SilenceUsage prevents printing usage on errors
		SilenceUsage: true,

		// SilenceErrors lets Execute print the error chain
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is .eslintsync.yaml)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")

	cmd.AddCommand(
		newCreateCmd(a),
		newInspectCmd(a),
		newCatalogCmd(a),
		newConfigCmd(a),
		newHistoryCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI and reports a failure on stderr.
// This is called by main.main().
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		printError(cmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

// initialize loads configuration and sets up logging and metrics.
func (a *app) initialize(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if a.cfgFile != "" {
		loader.SetConfigFile(a.cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg
	a.configUsed = loader.ConfigFileUsed()

	level, err := logger.ParseLevel(cfg.Output.LogLevel)
	if err != nil {
		return &config.ValidationError{Field: "output.log_level", Message: err.Error()}
	}
	switch {
	case a.quiet:
		level = logger.LevelError
	case a.verbose:
		level = logger.LevelDebug
	}
	a.log = logger.New(level, cmd.ErrOrStderr())
	a.log.RegisterSecret(cfg.Codacy.APIToken)
	a.metrics = metrics.Global()

	if a.configUsed != "" {
		a.log.Debug("using config file %s", a.configUsed)
	}
	return nil
}

// isVerbose returns true if verbose mode is enabled
func (a *app) isVerbose() bool {
	return a.verbose && !a.quiet
}
