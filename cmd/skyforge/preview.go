package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skyforge/internal/build"
	"github.com/aellingwood/skyforge/internal/config"
	"github.com/aellingwood/skyforge/internal/server"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate the sprites and serve a preview gallery",
	Long: "Generate the sprites, then serve them on a checkerboard gallery page. " +
		"Editing the config file regenerates the sprites and reloads the page.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load config and apply flags.
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyPreviewFlags(cmd, cfg)
		verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
		out := cmd.OutOrStdout()

		// 2. Run the initial build.
		result, err := build.NewBuilder(cfg, build.BuildOptions{Verbose: verbose, Out: out}).Build()
		if err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		// 3. Create the server.
		srv := server.NewServer(server.ServeOptions{
			Port:         cfg.Preview.Port,
			Bind:         cfg.Preview.Host,
			OutputDir:    result.OutputDir,
			NoLiveReload: !cfg.Preview.LiveReload,
			Verbose:      verbose,
		})
		srv.SetGallery(server.GalleryFromResult(result))

		// 4. Regenerate when the config file changes. The output directory
		// stays where the server started.
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		absConfig, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		watcher := server.NewWatcher([]string{absConfig}, 100*time.Millisecond, func() {
			log.Println("Config changed, regenerating...")
			next, err := loadConfig(cmd)
			if err != nil {
				log.Printf("Reload failed: %v", err)
				return
			}
			applyPreviewFlags(cmd, next)
			next.Output.Dir = result.OutputDir
			res, err := build.NewBuilder(next, build.BuildOptions{Verbose: verbose, Out: out}).Build()
			if err != nil {
				log.Printf("Regeneration failed: %v", err)
				return
			}
			srv.SetGallery(server.GalleryFromResult(res))
			srv.NotifyReload()
		})
		srv.SetWatcher(watcher)

		// 5. Handle graceful shutdown.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				fmt.Fprintln(out, "\nShutting down...")
				cancel()
			case <-ctx.Done():
			}
		}()

		// 6. Serve until shutdown.
		err = srv.Start(ctx)
		_ = srv.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

// applyPreviewFlags folds the generate and preview flags set on cmd into
// cfg.
func applyPreviewFlags(cmd *cobra.Command, cfg *config.SkyConfig) {
	overrides := generateOverrides(cmd)
	f := cmd.Flags()
	if f.Changed("port") {
		overrides["port"], _ = f.GetInt("port")
	}
	if f.Changed("bind") {
		overrides["host"], _ = f.GetString("bind")
	}
	if f.Changed("no-live-reload") {
		noLiveReload, _ := f.GetBool("no-live-reload")
		overrides["liveReload"] = !noLiveReload
	}
	cfg.WithOverrides(overrides)
}

func init() {
	addGenerateFlags(previewCmd)
	previewCmd.Flags().Int("port", 1414, "server port")
	previewCmd.Flags().String("bind", "localhost", "bind address")
	previewCmd.Flags().Bool("no-live-reload", false, "disable live reload")

	rootCmd.AddCommand(previewCmd)
}
