package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JNZader/eslintsync/internal/config"
)

// DefaultConfigFile is the file written by "config init".
const DefaultConfigFile = ".eslintsync.yaml"

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and create eslintsync configuration files.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the effective configuration, merged from the config file,
environment variables and defaults. The API token is masked.

Examples:
  eslintsync config show
  CODACY_API_TOKEN=... eslintsync config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow(cmd)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default values",
		Long: `Write a configuration file holding every setting with its default value.
The API token is left out; set it through CODACY_API_TOKEN.

Examples:
  eslintsync config init
  eslintsync config init ci/eslintsync.yaml --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := writeConfigTemplate(path, force); err != nil {
				return err
			}
			if !a.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if !a.quiet {
		if a.configUsed != "" {
			fmt.Fprintf(out, "# Config file: %s\n\n", a.configUsed)
		} else {
			fmt.Fprint(out, "# No config file found, using defaults\n\n")
		}
	}

	data, err := yaml.Marshal(maskSensitiveConfig(a.cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// maskSensitiveConfig creates a copy with sensitive values masked
func maskSensitiveConfig(cfg *config.Config) *config.Config {
	masked := *cfg
	if masked.Codacy.APIToken != "" {
		masked.Codacy.APIToken = "***REDACTED***"
	}
	return &masked
}

func writeConfigTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg := config.DefaultConfig()
	cfg.Standard.Name = "My Coding Standard"
	cfg.Standard.ESLintConfig = ".eslintrc.js"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := []byte("# eslintsync configuration\n# The API token is read from CODACY_API_TOKEN.\n")
	return os.WriteFile(path, append(header, data...), 0o600)
}
