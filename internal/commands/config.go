package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidebuddy/sidebuddy/internal/config"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and initialize configuration",
		Long: `Inspect the effective sidebuddy settings. Values come from the config file,
a .env file and SIDEBUDDY_* environment variables, in increasing precedence.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd.ErrOrStderr())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if configFlag == "" {
				if _, err := config.EnsureConfigDir(); err != nil {
					return err
				}
			}
			if err := config.SaveConfigTo(config.DefaultConfig(), path); err != nil {
				return err
			}

			printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Wrote default configuration to %s", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

// configCmd is the instance registered on the root command
var configCmd = NewConfigCmd(nil)

// configPath returns the --config path or the default location
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.GetConfigPath()
}
