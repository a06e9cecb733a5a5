// Package sprite draws the sky sprites used by the weather app: a sun with
// a radial glow, a crescent moon and clouds built from overlapping puffs.
//
// Every sprite is a pure function of its parameters. Nothing is random and
// nothing is cached, so drawing the same sprite twice yields identical
// pixels.
package sprite

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/vector"
)

// ErrInvalidConfig is returned for parameters no sprite can be drawn from,
// such as an unknown cloud tier or a size that leaves no pixels to draw.
var ErrInvalidConfig = errors.New("invalid configuration")

// kappa is the control-point distance, as a fraction of the radius, for a
// cubic Bézier approximating a quarter circle.
const kappa = 0.5522847498

// Disc is a filled circle in pixel coordinates. A disc centred at (X, Y)
// with radius R covers the inclusive pixel box [X-R, X+R] on both axes.
type Disc struct {
	X, Y, R int
}

// Contains reports whether the centre of pixel (x, y) lies inside d.
func (d Disc) Contains(x, y int) bool {
	dx, dy := x-d.X, y-d.Y
	return dx*dx+dy*dy <= d.R*d.R
}

// Shape is a disc together with the colour it is filled with.
type Shape struct {
	Disc
	Color color.NRGBA
}

// NewCanvas returns a fully transparent w×h buffer with its origin at (0, 0).
func NewCanvas(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

// FillDisc draws d onto dst in colour c. Pixels fully inside the disc are
// replaced rather than blended, so the alpha of c is the alpha that ends up
// in dst. Rim pixels are interpolated with what was there by their
// coverage, and pixels outside the disc are left untouched.
func FillDisc(dst *image.NRGBA, d Disc, c color.NRGBA) {
	box := d.box().Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	m := coverage(box, d)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			cov := m.AlphaAt(x, y).A
			if cov == 0 {
				continue
			}
			dst.SetNRGBA(x, y, lerp(dst.NRGBAAt(x, y), c, uint32(cov)))
		}
	}
}

// paint fills shapes onto a fresh w×h canvas in order.
func paint(w, h int, shapes []Shape) *image.NRGBA {
	c := NewCanvas(w, h)
	for _, s := range shapes {
		FillDisc(c, s.Disc, s.Color)
	}
	return c
}

// box is the inclusive pixel box [X-R, X+R] as a half-open rectangle.
func (d Disc) box() image.Rectangle {
	return image.Rect(d.X-d.R, d.Y-d.R, d.X+d.R+1, d.Y+d.R+1)
}

// lerp returns src·m + dst·(1-m) for a coverage m in [0, 255], computed on
// premultiplied values and returned unpremultiplied. Full coverage returns
// src exactly.
func lerp(dst, src color.NRGBA, m uint32) color.NRGBA {
	if m == 0xff {
		return src
	}
	sa := uint32(src.A) * m
	da := uint32(dst.A) * (0xff - m)
	a := sa + da
	if a == 0 {
		return color.NRGBA{}
	}
	ch := func(s, d uint8) uint8 {
		return uint8((uint32(s)*sa + uint32(d)*da + a/2) / a)
	}
	return color.NRGBA{
		R: ch(src.R, dst.R),
		G: ch(src.G, dst.G),
		B: ch(src.B, dst.B),
		A: uint8((a + 127) / 255),
	}
}

// coverage rasterizes d into an alpha mask over r, where each pixel holds
// the fraction of its area covered by the disc.
func coverage(r image.Rectangle, d Disc) *image.Alpha {
	var z vector.Rasterizer
	z.Reset(r.Dx(), r.Dy())

	// Pixel (x, y) spans [x, x+1), so the inclusive box [X-R, X+R] is a
	// circle of radius R+0.5 around the pixel centre.
	cx := float32(d.X-r.Min.X) + 0.5
	cy := float32(d.Y-r.Min.Y) + 0.5
	rad := float32(d.R) + 0.5
	k := rad * kappa

	z.MoveTo(cx+rad, cy)
	z.CubeTo(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
	z.CubeTo(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
	z.CubeTo(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
	z.CubeTo(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	z.ClosePath()

	m := image.NewAlpha(r)
	z.Draw(m, r, image.Opaque, r.Min)
	return m
}
