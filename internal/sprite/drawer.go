package sprite

import "image"

// Drawer renders one kind of sprite at a requested size.
type Drawer interface {
	// Bounds returns the buffer rectangle Draw produces for size.
	Bounds(size int) image.Rectangle
	Draw(size int) (*image.NRGBA, error)
}

var (
	_ Drawer = Sun{}
	_ Drawer = Moon{}
	_ Drawer = Cloud{}
)

// DrawSun renders the default sun.
func DrawSun(size int) (*image.NRGBA, error) {
	return DefaultSun().Draw(size)
}

// DrawMoon renders the default moon.
func DrawMoon(size int) (*image.NRGBA, error) {
	return DefaultMoon().Draw(size)
}

// DrawCloud renders the default cloud for tier t.
func DrawCloud(size int, t Tier) (*image.NRGBA, error) {
	return DefaultCloud(t).Draw(size)
}
