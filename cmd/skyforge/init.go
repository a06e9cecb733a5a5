package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skyforge/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter config file",
	Long:  "Write a config file holding every default setting into dir (the current directory if omitted).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		format, _ := cmd.Flags().GetString("format")

		path, err := scaffold.InitConfig(dir, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("format", "yaml", "config format: yaml or toml")

	rootCmd.AddCommand(initCmd)
}
