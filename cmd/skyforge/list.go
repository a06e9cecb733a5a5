package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skyforge/internal/build"
	skyimage "github.com/aellingwood/skyforge/internal/image"
	"github.com/aellingwood/skyforge/internal/sprite"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured sprites",
	Long:  "List every configured sprite with its kind, size, tier, output file, and dimensions.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		format, err := skyimage.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tSIZE\tTIER\tFILE\tDIMENSIONS")
		for _, a := range cfg.Assets {
			d, err := build.DrawerFor(a, cfg)
			if err != nil {
				return err
			}
			b := d.Bounds(a.Size)
			tier := a.Tier
			if tier == "" {
				tier = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%dx%d\n",
				a.Name, a.Kind, a.Size, tier,
				filepath.ToSlash(filepath.Join(cfg.Output.Dir, a.FileName(format))),
				b.Dx(), b.Dy())
		}
		return tw.Flush()
	},
}

var listPuffsCmd = &cobra.Command{
	Use:   "puffs <tier>",
	Short: "List the puff circles of a cloud tier",
	Long:  "List the puff offsets and radii of a cloud tier (far, mid, or near), relative to the cloud centre.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, err := sprite.ParseTier(args[0])
		if err != nil {
			return err
		}
		puffs, err := sprite.Puffs(tier)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DX\tDY\tRADIUS")
		for _, p := range puffs {
			fmt.Fprintf(tw, "%d\t%d\t%d\n", p.DX, p.DY, p.R)
		}
		return tw.Flush()
	},
}

var listFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the files in the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		files, err := build.ListFiles(cfg.Output.Dir)
		if err != nil {
			return fmt.Errorf("listing %s: %w", cfg.Output.Dir, err)
		}

		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintln(out, "No generated files found.")
			return nil
		}
		for _, f := range files {
			size := int64(0)
			if info, err := os.Stat(filepath.Join(cfg.Output.Dir, filepath.FromSlash(f))); err == nil {
				size = info.Size()
			}
			fmt.Fprintf(out, "%s  %s\n", f, formatBytes(size))
		}
		return nil
	},
}

func init() {
	listCmd.AddCommand(listPuffsCmd)
	listCmd.AddCommand(listFilesCmd)

	rootCmd.AddCommand(listCmd)
}
