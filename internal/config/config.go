// Package config handles loading, validating, and rendering the skyforge
// configuration: where sprites are written, which sprites to generate, and
// the cosmetic knobs of each sprite kind.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	skyimage "github.com/aellingwood/skyforge/internal/image"
	"github.com/aellingwood/skyforge/internal/sprite"
)

// DefaultConfigFile is the config file looked up when --config is not given.
const DefaultConfigFile = "skyforge.yaml"

// Asset kinds.
const (
	KindSun   = "sun"
	KindMoon  = "moon"
	KindCloud = "cloud"
)

// SkyConfig is the top-level skyforge configuration.
type SkyConfig struct {
	Output  OutputConfig  `yaml:"output"  toml:"output"  mapstructure:"output"`
	Workers int           `yaml:"workers" toml:"workers" mapstructure:"workers"`
	Assets  []AssetConfig `yaml:"assets"  toml:"assets"  mapstructure:"assets"`
	Sun     SunConfig     `yaml:"sun"     toml:"sun"     mapstructure:"sun"`
	Moon    MoonConfig    `yaml:"moon"    toml:"moon"    mapstructure:"moon"`
	Cloud   CloudConfig   `yaml:"cloud"   toml:"cloud"   mapstructure:"cloud"`
	Preview PreviewConfig `yaml:"preview" toml:"preview" mapstructure:"preview"`
}

// OutputConfig controls where and how sprite files are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"    toml:"dir"    mapstructure:"dir"`
	Format string `yaml:"format" toml:"format" mapstructure:"format"`
	Clean  bool   `yaml:"clean"  toml:"clean"  mapstructure:"clean"`
}

// AssetConfig describes one sprite to generate. Tier applies to clouds only.
type AssetConfig struct {
	Name string `yaml:"name"           toml:"name"           mapstructure:"name"`
	Kind string `yaml:"kind"           toml:"kind"           mapstructure:"kind"`
	Size int    `yaml:"size"           toml:"size"           mapstructure:"size"`
	Tier string `yaml:"tier,omitempty" toml:"tier,omitempty" mapstructure:"tier"`
}

// SunConfig tunes the sun's glow rings.
type SunConfig struct {
	RingCount int `yaml:"ringCount" toml:"ringCount" mapstructure:"ringCount"`
	RingStep  int `yaml:"ringStep"  toml:"ringStep"  mapstructure:"ringStep"`
	AlphaBase int `yaml:"alphaBase" toml:"alphaBase" mapstructure:"alphaBase"`
	AlphaStep int `yaml:"alphaStep" toml:"alphaStep" mapstructure:"alphaStep"`
}

// MoonConfig tunes the crescent cutout and glow.
type MoonConfig struct {
	CutoutShiftY int     `yaml:"cutoutShiftY" toml:"cutoutShiftY" mapstructure:"cutoutShiftY"`
	GlowSigma    float64 `yaml:"glowSigma"    toml:"glowSigma"    mapstructure:"glowSigma"`
}

// CloudConfig tunes the cloud fill and edge softening.
type CloudConfig struct {
	Alpha     int     `yaml:"alpha"     toml:"alpha"     mapstructure:"alpha"`
	BlurSigma float64 `yaml:"blurSigma" toml:"blurSigma" mapstructure:"blurSigma"`
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Host       string `yaml:"host"       toml:"host"       mapstructure:"host"`
	Port       int    `yaml:"port"       toml:"port"       mapstructure:"port"`
	LiveReload bool   `yaml:"liveReload" toml:"liveReload" mapstructure:"liveReload"`
}

// Default returns a SkyConfig that generates the five stock sprites into
// ./output.
func Default() *SkyConfig {
	return &SkyConfig{
		Output: OutputConfig{
			Dir:    "output",
			Format: string(skyimage.FormatPNG),
		},
		Workers: 1,
		Assets:  DefaultAssets(),
		Sun: SunConfig{
			RingCount: sprite.SunRingCount,
			RingStep:  sprite.SunRingStep,
			AlphaBase: sprite.SunAlphaBase,
			AlphaStep: sprite.SunAlphaStep,
		},
		Moon: MoonConfig{
			CutoutShiftY: sprite.MoonCutoutShiftY,
			GlowSigma:    sprite.MoonGlowSigma,
		},
		Cloud: CloudConfig{
			Alpha:     sprite.CloudAlpha,
			BlurSigma: sprite.CloudBlurSigma,
		},
		Preview: PreviewConfig{
			Host:       "localhost",
			Port:       1414,
			LiveReload: true,
		},
	}
}

// DefaultAssets returns the stock sprite list.
func DefaultAssets() []AssetConfig {
	return []AssetConfig{
		{Name: "sun", Kind: KindSun, Size: sprite.DefaultSize},
		{Name: "moon", Kind: KindMoon, Size: sprite.DefaultSize},
		{Name: "cloud_far", Kind: KindCloud, Size: 512, Tier: "far"},
		{Name: "cloud_mid", Kind: KindCloud, Size: 600, Tier: "mid"},
		{Name: "cloud_near", Kind: KindCloud, Size: 800, Tier: "near"},
	}
}

// envKeys are the scalar keys that SKYFORGE_* environment variables can
// override, e.g. SKYFORGE_OUTPUT_DIR for output.dir.
var envKeys = []string{
	"output.dir",
	"output.format",
	"output.clean",
	"workers",
	"preview.host",
	"preview.port",
	"preview.liveReload",
}

// Load reads a configuration file from configPath (YAML or TOML) and returns
// a SkyConfig with defaults applied first, then file values, then
// environment overrides. The file must exist.
func Load(configPath string) (*SkyConfig, error) {
	return load(configPath, false)
}

// LoadOptional is like Load but falls back to defaults (plus environment
// overrides) when configPath does not exist.
func LoadOptional(configPath string) (*SkyConfig, error) {
	return load(configPath, true)
}

func load(configPath string, optional bool) (*SkyConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("SKYFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding environment for %s: %w", key, err)
		}
	}

	// Determine format from extension.
	ext := strings.TrimPrefix(filepath.Ext(configPath), ".")
	switch ext {
	case "toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("yaml")
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if !optional || !isNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// A configured asset list replaces the defaults rather than being
	// merged into them element by element.
	if v.IsSet("assets") {
		cfg.Assets = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
}

// invalid wraps sprite.ErrInvalidConfig with a formatted message.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sprite.ErrInvalidConfig}, args...)...)
}

// Validate checks the SkyConfig for errors. Every error wraps
// sprite.ErrInvalidConfig, so callers can reject a bad config before any
// drawing starts.
func (c *SkyConfig) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return invalid("output.dir is required")
	}
	if _, err := skyimage.ParseFormat(c.Output.Format); err != nil {
		return invalid("output.format: %v", err)
	}
	if c.Workers < 1 {
		return invalid("workers must be at least 1 (got %d)", c.Workers)
	}

	if len(c.Assets) == 0 {
		return invalid("at least one asset is required")
	}
	seen := make(map[string]string, len(c.Assets))
	for i, a := range c.Assets {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("assets[%d]: %w", i, err)
		}
		stem := a.Stem()
		if prev, ok := seen[stem]; ok {
			return invalid("assets %q and %q both write %s", prev, a.Name, stem)
		}
		seen[stem] = a.Name
	}

	if c.Sun.RingCount < 0 || c.Sun.RingStep < 0 {
		return invalid("sun.ringCount and sun.ringStep must not be negative")
	}
	if c.Sun.AlphaBase < 0 || c.Sun.AlphaBase > 255 {
		return invalid("sun.alphaBase must be within 0-255 (got %d)", c.Sun.AlphaBase)
	}
	if c.Moon.GlowSigma < 0 {
		return invalid("moon.glowSigma must not be negative")
	}
	if c.Cloud.Alpha < 0 || c.Cloud.Alpha > 255 {
		return invalid("cloud.alpha must be within 0-255 (got %d)", c.Cloud.Alpha)
	}
	if c.Cloud.BlurSigma < 0 {
		return invalid("cloud.blurSigma must not be negative")
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return invalid("preview.port out of range (got %d)", c.Preview.Port)
	}
	return nil
}

// Validate checks a single asset entry.
func (a AssetConfig) Validate() error {
	if a.Stem() == "" {
		return invalid("asset name %q yields an empty file name", a.Name)
	}
	switch a.Kind {
	case KindSun, KindMoon:
		if a.Tier != "" {
			return invalid("asset %q: tier only applies to clouds", a.Name)
		}
		if a.Size < 1 {
			return invalid("asset %q: size must be positive (got %d)", a.Name, a.Size)
		}
	case KindCloud:
		if _, err := sprite.ParseTier(a.Tier); err != nil {
			return fmt.Errorf("asset %q: %w", a.Name, err)
		}
		if a.Size < 2 {
			return invalid("asset %q: cloud size must be at least 2 (got %d)", a.Name, a.Size)
		}
	default:
		return invalid("asset %q: unknown kind %q (want sun, moon or cloud)", a.Name, a.Kind)
	}
	return nil
}

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// Stem returns the file name, without extension, that the asset is written
// to. The name is NFC-normalized and lowercased; spaces and hyphens become
// underscores and anything other than letters, digits and underscores is
// dropped. "Cloud Far" becomes "cloud_far".
func (a AssetConfig) Stem() string {
	s := norm.NFC.String(strings.TrimSpace(a.Name))
	s = strings.ToLower(s)

	var buf strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '-' || r == '_':
			buf.WriteRune('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			buf.WriteRune(r)
		}
	}
	s = multiUnderscore.ReplaceAllString(buf.String(), "_")
	return strings.Trim(s, "_")
}

// FileName returns the stem plus the extension of format.
func (a AssetConfig) FileName(format skyimage.Format) string {
	return a.Stem() + "." + format.Extension()
}

// WithOverrides applies CLI flag overrides to the config. Known keys are
// mapped to their corresponding struct fields. The modified config is returned
// for convenient chaining.
func (c *SkyConfig) WithOverrides(overrides map[string]any) *SkyConfig {
	for key, val := range overrides {
		switch key {
		case "output":
			if s, ok := val.(string); ok && s != "" {
				c.Output.Dir = s
			}
		case "format":
			if s, ok := val.(string); ok && s != "" {
				c.Output.Format = s
			}
		case "clean":
			if b, ok := val.(bool); ok {
				c.Output.Clean = b
			}
		case "workers":
			if n, ok := val.(int); ok {
				c.Workers = n
			}
		case "host":
			if s, ok := val.(string); ok && s != "" {
				c.Preview.Host = s
			}
		case "port":
			if n, ok := val.(int); ok {
				c.Preview.Port = n
			}
		case "liveReload":
			if b, ok := val.(bool); ok {
				c.Preview.LiveReload = b
			}
		}
	}
	return c
}

// Marshal renders c as "yaml" or "toml".
func Marshal(c *SkyConfig, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml", "":
		return yaml.Marshal(c)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported config format %q (want yaml or toml)", format)
}
