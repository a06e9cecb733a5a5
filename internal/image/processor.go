// Package image writes generated sprites to disk in lossless formats that
// keep the alpha channel.
package image

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gen2brain/webp"
)

// Format is an output encoding. Every format is lossless and keeps alpha.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat maps a format name (case-insensitive) to a Format. The empty
// string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want png or webp)", s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatWebP:
		return "webp"
	default:
		return "png"
	}
}

// WrittenImage describes one sprite file on disk.
type WrittenImage struct {
	Name   string
	Path   string
	Width  int
	Height int
	Format Format
	Size   int64 // bytes on disk
}

// Processor saves sprites into one output directory and keeps a registry of
// what it wrote, keyed by asset name. All methods are safe for concurrent
// use.
type Processor struct {
	outputDir string
	format    Format
	mu        sync.Mutex
	registry  map[string]*WrittenImage
}

// NewProcessor creates a Processor writing format files into outputDir.
func NewProcessor(outputDir string, format Format) *Processor {
	return &Processor{
		outputDir: outputDir,
		format:    format,
		registry:  make(map[string]*WrittenImage),
	}
}

// OutputDir returns the directory files are written to.
func (p *Processor) OutputDir() string {
	return p.outputDir
}

// Path returns the file path an asset with the given file stem is written
// to, e.g. output/cloud_far.png.
func (p *Processor) Path(stem string) string {
	return filepath.Join(p.outputDir, stem+"."+p.format.Extension())
}

// Process encodes img to the file for stem, replacing any existing file,
// and registers the result under name.
func (p *Processor) Process(name, stem string, img image.Image) (*WrittenImage, error) {
	path := p.Path(stem)
	if err := Save(img, path, p.format); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	b := img.Bounds()
	wi := &WrittenImage{
		Name:   name,
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: p.format,
		Size:   info.Size(),
	}
	p.register(name, wi)
	return wi, nil
}

// Get returns the WrittenImage registered under name, or nil.
func (p *Processor) Get(name string) *WrittenImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registry[name]
}

// Written returns every registered image, sorted by path.
func (p *Processor) Written() []*WrittenImage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*WrittenImage, 0, len(p.registry))
	for _, wi := range p.registry {
		out = append(out, wi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (p *Processor) register(name string, wi *WrittenImage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry[name] = wi
}

// Save writes img to path in the given format. Parent directories are
// created as needed and an existing file is overwritten.
func Save(img image.Image, path string, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatWebP:
		if err := webp.Encode(f, img, webp.Options{Lossless: true, Quality: 100}); err != nil {
			return fmt.Errorf("encoding webp %s: %w", path, err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(f, img); err != nil {
			return fmt.Errorf("encoding png %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
