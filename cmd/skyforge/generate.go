package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skyforge/internal/build"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the sprites",
	Long:  "Draw every configured sprite and write it to the output directory.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.WithOverrides(generateOverrides(cmd))

	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	builder := build.NewBuilder(cfg, build.BuildOptions{
		Verbose: verbose,
		Out:     cmd.OutOrStdout(),
	})
	result, err := builder.Build()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files (%s) to %s in %s\n",
			result.FilesWritten,
			formatBytes(result.OutputSize),
			result.OutputDir,
			result.Duration.Round(time.Millisecond),
		)
	}
	return nil
}

// addGenerateFlags registers the flags that override the output section of
// the config.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output directory (default from config)")
	cmd.Flags().String("format", "", "image format: png or webp (default from config)")
	cmd.Flags().IntP("workers", "j", 0, "number of sprites drawn in parallel (default from config)")
	cmd.Flags().Bool("clean", false, "remove the output directory before generating")
}

// generateOverrides collects the generate flags set on cmd as config
// overrides.
func generateOverrides(cmd *cobra.Command) map[string]any {
	f := cmd.Flags()
	overrides := make(map[string]any)
	if f.Changed("output") {
		overrides["output"], _ = f.GetString("output")
	}
	if f.Changed("format") {
		overrides["format"], _ = f.GetString("format")
	}
	if f.Changed("workers") {
		overrides["workers"], _ = f.GetInt("workers")
	}
	if f.Changed("clean") {
		overrides["clean"], _ = f.GetBool("clean")
	}
	return overrides
}

// formatBytes renders n as a human readable size.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	addGenerateFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}
