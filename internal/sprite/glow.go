package sprite

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Silhouette is a binary shape built from an ordered list of discs, each of
// which either adds to the shape or carves out of it. Where discs overlap,
// the later one wins.
//
// Silhouette implements image.Image with the alpha colour model, so it can
// be used directly as a mask.
type Silhouette struct {
	rect  image.Rectangle
	steps []silhouetteStep
}

type silhouetteStep struct {
	disc  Disc
	carve bool
}

// NewSilhouette returns an empty w×h silhouette.
func NewSilhouette(w, h int) *Silhouette {
	return &Silhouette{rect: image.Rect(0, 0, w, h)}
}

// Add includes d in the shape.
func (s *Silhouette) Add(d Disc) *Silhouette {
	s.steps = append(s.steps, silhouetteStep{disc: d})
	return s
}

// Carve removes d from the shape.
func (s *Silhouette) Carve(d Disc) *Silhouette {
	s.steps = append(s.steps, silhouetteStep{disc: d, carve: true})
	return s
}

// Contains reports whether pixel (x, y) belongs to the shape.
func (s *Silhouette) Contains(x, y int) bool {
	in := false
	for _, st := range s.steps {
		if st.disc.Contains(x, y) {
			in = !st.carve
		}
	}
	return in
}

func (s *Silhouette) ColorModel() color.Model { return color.AlphaModel }

func (s *Silhouette) Bounds() image.Rectangle { return s.rect }

func (s *Silhouette) At(x, y int) color.Color {
	if image.Pt(x, y).In(s.rect) && s.Contains(x, y) {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

// Mask renders the silhouette into a buffer whose pixels are exactly 0 or
// 255.
func (s *Silhouette) Mask() *image.Alpha {
	m := image.NewAlpha(s.rect)
	for y := s.rect.Min.Y; y < s.rect.Max.Y; y++ {
		for x := s.rect.Min.X; x < s.rect.Max.X; x++ {
			if s.Contains(x, y) {
				m.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return m
}

// HardComposite selects fill wherever mask is opaque and leaves every other
// pixel fully transparent. With a binary mask this is a per-pixel select,
// not a blend.
func HardComposite(mask *image.Alpha, fill color.Color) *image.NRGBA {
	b := mask.Bounds()
	dst := image.NewNRGBA(b)
	draw.DrawMask(dst, b, image.NewUniform(fill), image.Point{}, mask, b.Min, draw.Src)
	return dst
}

// SoftGlow blurs a copy of img with the given Gaussian sigma and draws the
// sharp original over it, so edges gain a halo while the shape itself
// stays crisp.
func SoftGlow(img image.Image, sigma float64) *image.NRGBA {
	glow := imaging.Blur(img, sigma)
	return imaging.Overlay(glow, img, img.Bounds().Min, 1.0)
}

// Soften blurs the whole of img. A non-positive sigma returns a copy.
func Soften(img image.Image, sigma float64) *image.NRGBA {
	return imaging.Blur(img, sigma)
}

// Glow runs the three-step glow pipeline: render a silhouette to a binary
// mask, hard-composite Fill through it, then overlay the result on a
// blurred copy of itself.
type Glow struct {
	Fill  color.NRGBA
	Sigma float64
}

// Render runs the pipeline on s.
func (g Glow) Render(s *Silhouette) *image.NRGBA {
	return SoftGlow(HardComposite(s.Mask(), g.Fill), g.Sigma)
}
