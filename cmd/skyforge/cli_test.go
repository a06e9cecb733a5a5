package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aellingwood/skyforge/internal/build"
	"github.com/aellingwood/skyforge/internal/sprite"
)

// run executes the root command with args and returns its output. Flags on
// every command are reset first, since the command tree is shared between
// tests.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "skyforge" {
		t.Errorf("expected root command Use to be 'skyforge', got %q", rootCmd.Use)
	}

	expectedSubcommands := []string{"generate", "preview", "init", "config", "list", "version"}
	nameSet := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		nameSet[cmd.Name()] = true
	}
	for _, expected := range expectedSubcommands {
		if !nameSet[expected] {
			t.Errorf("expected root command to have subcommand %q", expected)
		}
	}
}

func TestGenerateFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{rootCmd, generateCmd, previewCmd} {
		for _, name := range []string{"output", "format", "workers", "clean"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s to have flag %q", cmd.Name(), name)
			}
		}
	}

	shorts := map[string]string{"o": "output", "j": "workers"}
	for short, name := range shorts {
		flag := generateCmd.Flags().ShorthandLookup(short)
		if flag == nil {
			t.Errorf("expected short flag -%s", short)
		} else if flag.Name != name {
			t.Errorf("expected -%s to map to %q, got %q", short, name, flag.Name)
		}
	}
}

func TestPreviewFlags(t *testing.T) {
	defaults := map[string]string{
		"port":           "1414",
		"bind":           "localhost",
		"no-live-reload": "false",
	}
	for name, want := range defaults {
		flag := previewCmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("expected preview command to have flag %q", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("expected %s default %q, got %q", name, want, flag.DefValue)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.HasPrefix(out, "skyforge dev\n") {
		t.Errorf("unexpected version output:\n%s", out)
	}
}

func TestGenerate_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t)
	if err != nil {
		t.Fatalf("skyforge failed: %v", err)
	}

	want := "Generating sun...\n" +
		"Generating moon...\n" +
		"Generating cloud_far...\n" +
		"Generating cloud_mid...\n" +
		"Generating cloud_near...\n" +
		"Done!\n"
	if out != want {
		t.Errorf("unexpected output:\n%s", out)
	}

	files, err := build.ListFiles("output")
	if err != nil {
		t.Fatal(err)
	}
	wantFiles := []string{"cloud_far.png", "cloud_mid.png", "cloud_near.png", "moon.png", "sun.png"}
	if strings.Join(files, ",") != strings.Join(wantFiles, ",") {
		t.Errorf("expected files %v, got %v", wantFiles, files)
	}
}

func TestGenerate_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := "assets:\n  - {name: Big Sun, kind: sun, size: 64}\n"
	if err := os.WriteFile("sky.yaml", []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "generate", "--config", "sky.yaml", "-o", "sprites", "--format", "webp", "-j", "2")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join("sprites", "big_sun.webp")); err != nil {
		t.Errorf("expected sprites/big_sun.webp: %v", err)
	}
	if _, err := os.Stat("output"); !os.IsNotExist(err) {
		t.Error("default output directory should not be created")
	}
}

func TestGenerate_InvalidTier(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := "assets:\n  - {name: storm, kind: cloud, size: 64, tier: huge}\n"
	if err := os.WriteFile("sky.yaml", []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "--config", "sky.yaml")
	if !errors.Is(err, sprite.ErrInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
	if _, err := os.Stat("output"); !os.IsNotExist(err) {
		t.Error("nothing should be written for an invalid config")
	}
}

func TestGenerate_MissingExplicitConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := run(t, "--config", "missing.yaml"); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")

	out, err := run(t, "init", dir, "--format", "toml")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "skyforge.toml") {
		t.Errorf("expected created path in output, got %q", out)
	}

	if _, err := run(t, "init", dir, "--format", "toml"); err == nil {
		t.Error("expected second init to refuse to overwrite")
	}
}

func TestConfigOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"cloud_near", "ringCount: 20", "port: 1414"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in config output:\n%s", want, out)
		}
	}

	out, err = run(t, "config", "--format", "toml")
	if err != nil {
		t.Fatalf("config --format toml failed: %v", err)
	}
	if !strings.Contains(out, "[output]") {
		t.Errorf("expected toml table in output:\n%s", out)
	}
}

func TestList(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"cloud_far", "output/cloud_far.png", "512x256", "800x400", "512x512"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in list output:\n%s", want, out)
		}
	}
}

func TestListPuffs(t *testing.T) {
	out, err := run(t, "list", "puffs", "far")
	if err != nil {
		t.Fatalf("list puffs failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 puffs, got:\n%s", out)
	}
	if fields := strings.Fields(lines[2]); strings.Join(fields, " ") != "-50 10 40" {
		t.Errorf("unexpected second puff %q", lines[2])
	}

	if _, err := run(t, "list", "puffs", "huge"); !errors.Is(err, sprite.ErrInvalidConfig) {
		t.Errorf("expected invalid config error for unknown tier, got %v", err)
	}
}

func TestListFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "list", "files")
	if err != nil {
		t.Fatalf("list files failed: %v", err)
	}
	if !strings.Contains(out, "No generated files found.") {
		t.Errorf("expected empty message, got %q", out)
	}

	if _, err := run(t, "generate"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	out, err = run(t, "list", "files")
	if err != nil {
		t.Fatalf("list files failed: %v", err)
	}
	if !strings.Contains(out, "sun.png") || !strings.Contains(out, "cloud_near.png") {
		t.Errorf("expected generated files in output:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1 << 20, "1.0 MiB"},
	}
	for _, tc := range tests {
		if got := formatBytes(tc.n); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
