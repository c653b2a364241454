package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"logpuzzle/pkg/config"
	"logpuzzle/pkg/ui"
)

const defaultConfigPath = ".logpuzzle.yaml"

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage logpuzzle configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (LOGPUZZLE_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if path == "" {
				path = defaultConfigPath
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file already exists: %s", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.OutOrStdout(), "Configuration file created: "+path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile, nil)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := opts.configFile
			if source == "" {
				source = "(defaults and environment)"
			}
			ui.PrintInfo(cmd.OutOrStdout(), "Validating configuration", source)
			if _, err := config.Load(opts.configFile, nil); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd, validateCmd)
	return configCmd
}
