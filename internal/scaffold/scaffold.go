// Package scaffold writes starter files for new skyforge projects.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aellingwood/skyforge/internal/config"
)

// nowFunc returns the current time. It is a variable so tests can override
// it for deterministic output.
var nowFunc = time.Now

// ConfigFileName returns the name of the starter config for format, which
// is "yaml" or "toml".
func ConfigFileName(format string) (string, error) {
	switch format {
	case "yaml", "yml", "":
		return "skyforge.yaml", nil
	case "toml":
		return "skyforge.toml", nil
	}
	return "", fmt.Errorf("unsupported config format %q (want yaml or toml)", format)
}

// InitConfig writes a starter config holding every default into dir and
// returns its path. It creates dir if needed and refuses to overwrite an
// existing config.
func InitConfig(dir, format string) (string, error) {
	name, err := ConfigFileName(format)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	body, err := config.Marshal(config.Default(), format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %q: %w", dir, err)
	}

	var b strings.Builder
	b.WriteString("# skyforge configuration\n")
	fmt.Fprintf(&b, "# Created %s. Run `skyforge generate` to draw the sprites.\n", nowFunc().Format("2006-01-02"))
	b.WriteString("# Sizes are in pixels; cloud tiers are far, mid, or near.\n\n")
	b.Write(body)

	// O_EXCL keeps a config created since the Stat above intact.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
