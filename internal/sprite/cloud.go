package sprite

import (
	"fmt"
	"image"
	"image/color"
)

// Tier selects one of the fixed cloud silhouettes. The zero value is not a
// valid tier.
type Tier int

const (
	TierFar Tier = iota + 1
	TierMid
	TierNear
)

// Cloud fill and softening.
const (
	CloudAlpha     = 240
	CloudBlurSigma = 3.0
)

var tierNames = map[Tier]string{
	TierFar:  "far",
	TierMid:  "mid",
	TierNear: "near",
}

// Tiers returns every valid tier, simplest first.
func Tiers() []Tier {
	return []Tier{TierFar, TierMid, TierNear}
}

// ParseTier maps "far", "mid" or "near" to its Tier. Any other string is a
// configuration error.
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if s == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown cloud tier %q (want far, mid or near)", ErrInvalidConfig, s)
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Valid reports whether t is one of the named tiers.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// Puff is one circle of a cloud, positioned relative to the centre of the
// buffer.
type Puff struct {
	DX, DY int
	R      int
}

var tierPuffs = map[Tier][]Puff{
	TierFar: {
		{DX: 0, DY: 0, R: 60},
		{DX: -50, DY: 10, R: 40},
		{DX: 50, DY: 10, R: 40},
	},
	TierMid: {
		{DX: 0, DY: -20, R: 70},
		{DX: -60, DY: 10, R: 50},
		{DX: 60, DY: 10, R: 50},
		{DX: -30, DY: 30, R: 50},
		{DX: 30, DY: 30, R: 50},
	},
	TierNear: {
		{DX: 0, DY: -30, R: 90},
		{DX: -80, DY: 10, R: 70},
		{DX: 80, DY: 10, R: 70},
		{DX: -40, DY: 40, R: 60},
		{DX: 40, DY: 40, R: 60},
	},
}

// Puffs returns the puffs of tier t in drawing order.
func Puffs(t Tier) ([]Puff, error) {
	p, ok := tierPuffs[t]
	if !ok {
		return nil, fmt.Errorf("%w: unknown cloud tier %v", ErrInvalidConfig, t)
	}
	return append([]Puff(nil), p...), nil
}

// Cloud draws a cluster of translucent white puffs and blurs the edges.
// The buffer is size wide and size/2 tall.
type Cloud struct {
	Tier      Tier
	Alpha     uint8
	BlurSigma float64
}

// DefaultCloud returns a cloud of tier t with the stock fill and blur.
func DefaultCloud(t Tier) Cloud {
	return Cloud{Tier: t, Alpha: CloudAlpha, BlurSigma: CloudBlurSigma}
}

// Bounds returns the size×size/2 buffer rectangle.
func (c Cloud) Bounds(size int) image.Rectangle {
	return image.Rect(0, 0, size, size/2)
}

// Shapes lists the puff discs for a sprite of the given size, in absolute
// buffer coordinates.
func (c Cloud) Shapes(size int) ([]Shape, error) {
	puffs, err := Puffs(c.Tier)
	if err != nil {
		return nil, err
	}
	cx, cy := size/2, (size/2)/2
	fill := color.NRGBA{R: 255, G: 255, B: 255, A: c.Alpha}

	shapes := make([]Shape, len(puffs))
	for i, p := range puffs {
		shapes[i] = Shape{
			Disc:  Disc{X: cx + p.DX, Y: cy + p.DY, R: p.R},
			Color: fill,
		}
	}
	return shapes, nil
}

// Draw renders the cloud. An unknown tier is rejected before any buffer is
// allocated.
func (c Cloud) Draw(size int) (*image.NRGBA, error) {
	shapes, err := c.Shapes(size)
	if err != nil {
		return nil, err
	}
	if size < 2 {
		return nil, fmt.Errorf("%w: cloud size must be at least 2 (got %d)", ErrInvalidConfig, size)
	}
	b := c.Bounds(size)
	return Soften(paint(b.Dx(), b.Dy(), shapes), c.BlurSigma), nil
}
