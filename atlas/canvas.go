package atlas

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Canvas is a fixed-size RGBA page with a scan-line rectangle packer.
//
// Packed rectangles never move and their space is never reclaimed; Clear
// only erases pixels. A Canvas never grows.
//
// Canvas is not safe for concurrent use; Manager serializes access.
type Canvas struct {
	img *image.RGBA

	// occupied holds packed rectangles extended by Gutter to the right and
	// bottom, in packing order.
	occupied []image.Rectangle

	// usedArea is the pixel area of packed images without gutters.
	usedArea int
}

// NewCanvas creates a transparent canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image returns the backing image. Callers must not modify it.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Fits reports whether an image of the given size could fit an empty canvas.
func (c *Canvas) Fits(w, h int) bool {
	return w > 0 && h > 0 && w <= c.Width()-2*Border && h <= c.Height()-2*Border
}

// TryPack finds free space for img, copies its pixels there and returns the
// placed rectangle. It reports false when no space is left.
func (c *Canvas) TryPack(img image.Image) (image.Rectangle, bool) {
	size := img.Bounds().Size()
	pos, ok := c.findSpace(size.X, size.Y)
	if !ok {
		return image.Rectangle{}, false
	}

	r := image.Rectangle{Min: pos, Max: pos.Add(size)}
	xdraw.Draw(c.img, r, img, img.Bounds().Min, xdraw.Src)
	c.occupied = append(c.occupied, padded(r))
	c.usedArea += size.X * size.Y
	return r, true
}

// findSpace scans candidate positions row by row inside the border.
//
// On a collision the scan jumps past the right edge of the colliding
// rectangle, and the next row starts at the lowest bottom edge of any
// rectangle hit in the current row.
func (c *Canvas) findSpace(w, h int) (image.Point, bool) {
	if !c.Fits(w, h) {
		return image.Point{}, false
	}
	maxX := c.Width() - Border
	maxY := c.Height() - Border

	for y := Border; y+h <= maxY; {
		nextY := maxY
		for x := Border; x+w <= maxX; {
			hit, collides := c.collision(image.Rect(x, y, x+w, y+h))
			if !collides {
				return image.Pt(x, y), true
			}
			nextY = min(nextY, hit.Max.Y)
			x = hit.Max.X
		}
		y = max(nextY, y+1)
	}
	return image.Point{}, false
}

// collision returns the first occupied rectangle overlapping candidate r.
func (c *Canvas) collision(r image.Rectangle) (image.Rectangle, bool) {
	p := padded(r)
	for _, o := range c.occupied {
		if p.Overlaps(o) {
			return o, true
		}
	}
	return image.Rectangle{}, false
}

// Clear erases r to transparent. The space stays occupied.
func (c *Canvas) Clear(r image.Rectangle) {
	xdraw.Draw(c.img, r, image.Transparent, image.Point{}, xdraw.Src)
	c.usedArea -= r.Dx() * r.Dy()
}

// Utilization returns the fraction of the canvas covered by live images.
func (c *Canvas) Utilization() float64 {
	total := c.Width() * c.Height()
	if total == 0 {
		return 0
	}
	return float64(c.usedArea) / float64(total)
}

func padded(r image.Rectangle) image.Rectangle {
	r.Max.X += Gutter
	r.Max.Y += Gutter
	return r
}
