package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gen2brain/webp"
)

// newTestSprite returns a w×h NRGBA image that is transparent except for an
// opaque square in the top-left quarter.
func newTestSprite(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 200, B: 50, A: 255})
		}
	}
	return img
}

// decodePNG opens and decodes the PNG at path.
func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img
}

// ---------------------------------------------------------------
// Format
// ---------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{"webp", FormatWebP, false},
		{"jpeg", "", true},
		{"gif", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExtension(t *testing.T) {
	if got := FormatPNG.Extension(); got != "png" {
		t.Errorf("png extension = %q", got)
	}
	if got := FormatWebP.Extension(); got != "webp" {
		t.Errorf("webp extension = %q", got)
	}
}

// ---------------------------------------------------------------
// Save
// ---------------------------------------------------------------

func TestSave_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "sun.png")

	if err := Save(newTestSprite(8, 6), path, FormatPNG); err != nil {
		t.Fatalf("Save: %v", err)
	}
	img := decodePNG(t, path)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Errorf("decoded size = %v; want 8x6", img.Bounds())
	}
}

func TestSave_KeepsAlpha(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moon.png")
	if err := Save(newTestSprite(10, 10), path, FormatPNG); err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, path)
	if _, _, _, a := img.At(9, 9).RGBA(); a != 0 {
		t.Errorf("transparent pixel alpha = %d; want 0", a)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0xffff {
		t.Errorf("opaque pixel alpha = %d; want 0xffff", a)
	}
	switch img.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model:
	default:
		t.Errorf("decoded colour model has no alpha channel: %T", img)
	}
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.png")
	if err := Save(newTestSprite(20, 10), path, FormatPNG); err != nil {
		t.Fatal(err)
	}
	if err := Save(newTestSprite(4, 2), path, FormatPNG); err != nil {
		t.Fatal(err)
	}
	if got := decodePNG(t, path).Bounds().Dx(); got != 4 {
		t.Errorf("width after overwrite = %d; want 4", got)
	}
}

func TestSave_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	// A regular file where a directory is expected.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := Save(newTestSprite(2, 2), filepath.Join(blocker, "sun.png"), FormatPNG)
	if err == nil {
		t.Fatal("expected an error writing beneath a regular file")
	}
}

func TestSave_WebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sun.webp")
	if err := Save(newTestSprite(16, 8), path, FormatWebP); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("decoding webp: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("decoded size = %v; want 16x8", img.Bounds())
	}
	if _, _, _, a := img.At(15, 7).RGBA(); a != 0 {
		t.Errorf("transparent pixel alpha = %d; want 0 (lossless)", a)
	}
}

// ---------------------------------------------------------------
// Processor
// ---------------------------------------------------------------

func TestProcessor_Process(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	p := NewProcessor(dir, FormatPNG)

	wi, err := p.Process("cloud far", "cloud_far", newTestSprite(12, 6))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	wantPath := filepath.Join(dir, "cloud_far.png")
	if wi.Path != wantPath {
		t.Errorf("Path = %q; want %q", wi.Path, wantPath)
	}
	if wi.Width != 12 || wi.Height != 6 {
		t.Errorf("size = %dx%d; want 12x6", wi.Width, wi.Height)
	}
	if wi.Size <= 0 {
		t.Errorf("Size = %d; want > 0", wi.Size)
	}
	if got := p.Get("cloud far"); got != wi {
		t.Error("Get did not return the registered image")
	}
	if p.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
}

func TestProcessor_WrittenSorted(t *testing.T) {
	p := NewProcessor(t.TempDir(), FormatPNG)
	for _, stem := range []string{"sun", "cloud_mid", "moon"} {
		if _, err := p.Process(stem, stem, newTestSprite(4, 4)); err != nil {
			t.Fatal(err)
		}
	}
	written := p.Written()
	if len(written) != 3 {
		t.Fatalf("Written = %d; want 3", len(written))
	}
	want := []string{"cloud_mid", "moon", "sun"}
	for i, wi := range written {
		if wi.Name != want[i] {
			t.Errorf("Written[%d] = %q; want %q", i, wi.Name, want[i])
		}
	}
}
