package atlas

import (
	"fmt"
	"image"
)

// Atlas is one page: a canvas plus the names of the images packed into it.
type Atlas struct {
	canvas  *Canvas
	index   int
	regions map[string]image.Rectangle

	// dirty marks pixel changes not yet uploaded to the device.
	dirty bool
}

// newAtlas creates an empty page.
func newAtlas(index, width, height int) *Atlas {
	return &Atlas{
		canvas:  NewCanvas(width, height),
		index:   index,
		regions: make(map[string]image.Rectangle),
	}
}

// AddTexture packs img under name and returns its rectangle.
// It reports false when the page has no room.
func (a *Atlas) AddTexture(img image.Image, name string) (image.Rectangle, bool) {
	r, ok := a.canvas.TryPack(img)
	if !ok {
		return image.Rectangle{}, false
	}
	a.regions[name] = r
	a.dirty = true
	return r, true
}

// TryGetSourceRectangle returns the rectangle packed under name.
func (a *Atlas) TryGetSourceRectangle(name string) (image.Rectangle, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// RemoveTexture erases the pixels packed under name and forgets the name.
// The space is not reused by later packs.
func (a *Atlas) RemoveTexture(name string) bool {
	r, ok := a.regions[name]
	if !ok {
		return false
	}
	a.canvas.Clear(r)
	delete(a.regions, name)
	a.dirty = true
	return true
}

// Index returns the page index inside its manager.
func (a *Atlas) Index() int { return a.index }

// Len returns the number of live images on the page.
func (a *Atlas) Len() int { return len(a.regions) }

// Image returns the page pixels. Callers must not modify them.
func (a *Atlas) Image() *image.RGBA { return a.canvas.Image() }

// Size returns the page dimensions.
func (a *Atlas) Size() (width, height int) {
	return a.canvas.Width(), a.canvas.Height()
}

// Utilization returns the fraction of the page covered by live images.
func (a *Atlas) Utilization() float64 { return a.canvas.Utilization() }

func (a *Atlas) String() string {
	return fmt.Sprintf("Atlas{page=%d images=%d used=%.1f%%}", a.index, len(a.regions), a.Utilization()*100)
}
