// Package build orchestrates sprite generation. It resolves every
// configured asset to a sprite drawer, renders it, and writes the result to
// the output directory.
package build

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aellingwood/skyforge/internal/config"
	skyimage "github.com/aellingwood/skyforge/internal/image"
	"github.com/aellingwood/skyforge/internal/sprite"
)

// BuildOptions controls the behaviour of the build pipeline. Zero values
// fall back to the config.
type BuildOptions struct {
	OutputDir   string
	Format      skyimage.Format
	Workers     int
	Clean       bool
	Verbose     bool
	ProjectRoot string
	Out         io.Writer // progress lines; nil discards them
}

// AssetResult describes one generated sprite.
type AssetResult struct {
	Name     string
	Kind     string
	Path     string
	Width    int
	Height   int
	Size     int64
	Duration time.Duration
}

// BuildResult contains statistics about the completed build.
type BuildResult struct {
	OutputDir    string
	Assets       []AssetResult // in config order
	FilesWritten int
	OutputSize   int64
	Duration     time.Duration
}

// Builder coordinates the sprite generation pipeline.
type Builder struct {
	config  *config.SkyConfig
	options BuildOptions

	outMu sync.Mutex
}

// NewBuilder creates a new Builder with the given configuration and options.
func NewBuilder(cfg *config.SkyConfig, opts BuildOptions) *Builder {
	return &Builder{
		config:  cfg,
		options: opts,
	}
}

// job is one asset resolved to the drawer that renders it.
type job struct {
	asset  config.AssetConfig
	drawer sprite.Drawer
}

// Build generates every configured asset and returns a BuildResult
// summarizing what was written. The pipeline steps are:
//  1. Validate the config and resolve a drawer per asset
//  2. Clean or create the output directory
//  3. Draw and save each asset, sequentially or on a bounded worker pool
//
// Configuration errors abort before anything is drawn. Assets are
// independent, so an I/O failure on one does not stop the others; every
// failure is returned together.
func (b *Builder) Build() (*BuildResult, error) {
	start := time.Now()

	// Step 1: Validate and resolve.
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	jobs := make([]job, 0, len(b.config.Assets))
	for _, a := range b.config.Assets {
		d, err := DrawerFor(a, b.config)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", a.Name, err)
		}
		jobs = append(jobs, job{asset: a, drawer: d})
	}

	outputDir, err := b.outputDir()
	if err != nil {
		return nil, err
	}
	format, err := b.format()
	if err != nil {
		return nil, err
	}

	// Step 2: Clean or create the output directory.
	if b.options.Clean || b.config.Output.Clean {
		if err := CleanDir(outputDir); err != nil {
			return nil, fmt.Errorf("cleaning output directory: %w", err)
		}
	} else if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// Step 3: Draw and save.
	proc := skyimage.NewProcessor(outputDir, format)
	results := make([]AssetResult, len(jobs))
	errs := make([]error, len(jobs))

	workers := b.options.Workers
	if workers <= 0 {
		workers = b.config.Workers
	}

	if workers <= 1 {
		for i, j := range jobs {
			results[i], errs[i] = b.generate(proc, j)
		}
	} else {
		// Bounded worker pool.
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i, j := range jobs {
			wg.Add(1)
			sem <- struct{}{} // acquire
			go func() {
				defer wg.Done()
				defer func() { <-sem }() // release
				results[i], errs[i] = b.generate(proc, j)
			}()
		}
		wg.Wait()
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	result := &BuildResult{
		OutputDir: outputDir,
		Assets:    results,
		Duration:  time.Since(start),
	}
	for _, r := range results {
		result.FilesWritten++
		result.OutputSize += r.Size
	}

	b.printf("Done!\n")
	return result, nil
}

// generate draws and saves a single asset.
func (b *Builder) generate(proc *skyimage.Processor, j job) (AssetResult, error) {
	start := time.Now()
	b.printf("Generating %s...\n", j.asset.Name)

	img, err := j.drawer.Draw(j.asset.Size)
	if err != nil {
		return AssetResult{}, fmt.Errorf("drawing %s: %w", j.asset.Name, err)
	}
	wi, err := proc.Process(j.asset.Name, j.asset.Stem(), img)
	if err != nil {
		return AssetResult{}, fmt.Errorf("saving %s: %w", j.asset.Name, err)
	}

	r := AssetResult{
		Name:     j.asset.Name,
		Kind:     j.asset.Kind,
		Path:     wi.Path,
		Width:    wi.Width,
		Height:   wi.Height,
		Size:     wi.Size,
		Duration: time.Since(start),
	}
	if b.options.Verbose {
		b.printf("  wrote %s (%dx%d, %d bytes) in %s\n",
			r.Path, r.Width, r.Height, r.Size, r.Duration.Round(time.Millisecond))
	}
	return r, nil
}

// outputDir resolves the output directory against the project root.
func (b *Builder) outputDir() (string, error) {
	projectRoot := b.options.ProjectRoot
	if projectRoot == "" {
		var err error
		projectRoot, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determining project root: %w", err)
		}
	}

	outputDir := b.options.OutputDir
	if outputDir == "" {
		outputDir = b.config.Output.Dir
	}
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(projectRoot, outputDir)
	}
	return outputDir, nil
}

func (b *Builder) format() (skyimage.Format, error) {
	if b.options.Format != "" {
		return skyimage.ParseFormat(string(b.options.Format))
	}
	return skyimage.ParseFormat(b.config.Output.Format)
}

// printf writes a progress line. Lines from concurrent workers are not
// interleaved.
func (b *Builder) printf(format string, args ...any) {
	if b.options.Out == nil {
		return
	}
	b.outMu.Lock()
	defer b.outMu.Unlock()
	fmt.Fprintf(b.options.Out, format, args...)
}

// DrawerFor returns the drawer for asset a, tuned by the sprite sections of
// cfg.
func DrawerFor(a config.AssetConfig, cfg *config.SkyConfig) (sprite.Drawer, error) {
	switch a.Kind {
	case config.KindSun:
		s := sprite.DefaultSun()
		s.RingCount = cfg.Sun.RingCount
		s.RingStep = cfg.Sun.RingStep
		s.AlphaBase = cfg.Sun.AlphaBase
		s.AlphaStep = cfg.Sun.AlphaStep
		return s, nil
	case config.KindMoon:
		m := sprite.DefaultMoon()
		m.CutoutShiftY = cfg.Moon.CutoutShiftY
		m.GlowSigma = cfg.Moon.GlowSigma
		return m, nil
	case config.KindCloud:
		tier, err := sprite.ParseTier(a.Tier)
		if err != nil {
			return nil, err
		}
		c := sprite.DefaultCloud(tier)
		c.Alpha = uint8(min(max(cfg.Cloud.Alpha, 0), 255))
		c.BlurSigma = cfg.Cloud.BlurSigma
		return c, nil
	}
	return nil, fmt.Errorf("%w: unknown asset kind %q", sprite.ErrInvalidConfig, a.Kind)
}
