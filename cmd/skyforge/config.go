package main

import (
	"github.com/spf13/cobra"

	"github.com/aellingwood/skyforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long:  "Print the configuration after merging defaults, the config file, and SKYFORGE_* environment variables.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		data, err := config.Marshal(cfg, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configCmd.Flags().String("format", "yaml", "output format: yaml or toml")

	rootCmd.AddCommand(configCmd)
}
