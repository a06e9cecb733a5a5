package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skyforge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "skyforge",
	Short: "Procedural sky sprite generator",
	Long: "Skyforge draws sun, moon, and cloud sprites with transparent backgrounds " +
		"and writes them as image files. Run without a subcommand to generate.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	addGenerateFlags(rootCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the config for cmd. An explicit --config must exist;
// the default file is optional.
func loadConfig(cmd *cobra.Command) (*config.SkyConfig, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")

	var (
		cfg *config.SkyConfig
		err error
	)
	if flags.Changed("config") {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
