package sprite

import (
	"fmt"
	"image"
	"image/color"
)

// DefaultSize is the side length of the square sun and moon sprites.
const DefaultSize = 512

// Glow ring progression for the sun. Ring i (0-based, outermost first) has
// radius core+(SunRingCount-i)*SunRingStep and alpha
// SunAlphaBase+i*SunAlphaStep.
const (
	SunRingCount = 20
	SunRingStep  = 2
	SunAlphaBase = 10
	SunAlphaStep = 5
)

var (
	// SunGlowColor is the hue of the glow rings; its alpha is replaced per
	// ring.
	SunGlowColor = color.NRGBA{R: 255, G: 200, B: 50, A: 255}

	// SunCoreColor fills the solid disc.
	SunCoreColor = color.NRGBA{R: 255, G: 215, B: 0, A: 255}
)

// Sun draws a solid golden disc inside a stepped radial glow.
type Sun struct {
	RingCount int
	RingStep  int
	AlphaBase int
	AlphaStep int
	GlowColor color.NRGBA
	CoreColor color.NRGBA
}

// DefaultSun returns the sun with the stock glow progression.
func DefaultSun() Sun {
	return Sun{
		RingCount: SunRingCount,
		RingStep:  SunRingStep,
		AlphaBase: SunAlphaBase,
		AlphaStep: SunAlphaStep,
		GlowColor: SunGlowColor,
		CoreColor: SunCoreColor,
	}
}

// Bounds returns the square buffer rectangle for size.
func (s Sun) Bounds(size int) image.Rectangle {
	return image.Rect(0, 0, size, size)
}

// Shapes lists the discs drawn for a sprite of the given size, in drawing
// order: glow rings from the outside in, then the core.
func (s Sun) Shapes(size int) []Shape {
	center := size / 2
	radius := size / 3

	shapes := make([]Shape, 0, s.RingCount+1)
	for i := range s.RingCount {
		c := s.GlowColor
		c.A = clampAlpha(s.AlphaBase + i*s.AlphaStep)
		shapes = append(shapes, Shape{
			Disc:  Disc{X: center, Y: center, R: radius + (s.RingCount-i)*s.RingStep},
			Color: c,
		})
	}
	shapes = append(shapes, Shape{
		Disc:  Disc{X: center, Y: center, R: radius},
		Color: s.CoreColor,
	})
	return shapes
}

// Draw renders the sun into a size×size buffer.
func (s Sun) Draw(size int) (*image.NRGBA, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: sun size must be positive (got %d)", ErrInvalidConfig, size)
	}
	return paint(size, size, s.Shapes(size)), nil
}

func clampAlpha(a int) uint8 {
	return uint8(min(max(a, 0), 255))
}
