package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/navcodec/pkg/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the navcodec configuration file",
		// Overrides the root pre-run: these commands must work without a
		// valid config file.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a configuration file with default codec settings and a generated
server API key.

Examples:
  navcodec config init
  navcodec config init --config ./navcodec.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			configPath := configPathFlag(cmd)

			if config.ConfigExists(configPath) && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
			}

			if _, err := config.BootstrapConfig(configPath); err != nil {
				return err
			}
			cmd.Printf("Configuration created at %s\n", configPath)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file and flags are applied.
The server API key is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			cfg := *e.cfg
			if cfg.Server.APIKey != "" {
				cfg.Server.APIKey = "********"
			}
			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func configPathFlag(cmd *cobra.Command) string {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	return configPath
}
