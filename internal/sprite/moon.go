package sprite

import (
	"fmt"
	"image"
	"image/color"
)

// Crescent geometry. The cutout disc has the same radius as the moon and is
// shifted right by half the radius and up by MoonCutoutShiftY pixels.
const (
	MoonCutoutShiftY = 20
	MoonGlowSigma    = 10.0
)

// MoonColor is the near-white fill of the crescent.
var MoonColor = color.NRGBA{R: 255, G: 252, B: 230, A: 255}

// Moon draws a crescent with a soft outer glow.
type Moon struct {
	CutoutShiftY int
	GlowSigma    float64
	Fill         color.NRGBA
}

// DefaultMoon returns the moon with the stock crescent and glow.
func DefaultMoon() Moon {
	return Moon{
		CutoutShiftY: MoonCutoutShiftY,
		GlowSigma:    MoonGlowSigma,
		Fill:         MoonColor,
	}
}

// Bounds returns the square buffer rectangle for size.
func (m Moon) Bounds(size int) image.Rectangle {
	return image.Rect(0, 0, size, size)
}

// Silhouette returns the crescent shape: the full moon disc with the
// offset cutout disc carved away.
func (m Moon) Silhouette(size int) *Silhouette {
	center := size / 2
	radius := size / 3
	offset := radius / 2
	return NewSilhouette(size, size).
		Add(Disc{X: center, Y: center, R: radius}).
		Carve(Disc{X: center + offset, Y: center - m.CutoutShiftY, R: radius})
}

// Draw renders the moon into a size×size buffer.
func (m Moon) Draw(size int) (*image.NRGBA, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: moon size must be positive (got %d)", ErrInvalidConfig, size)
	}
	return Glow{Fill: m.Fill, Sigma: m.GlowSigma}.Render(m.Silhouette(size)), nil
}
