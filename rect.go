package sprite

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle in pixels.
// Width and Height may be negative on input; see [Rect.Normalize].
type Rect struct {
	X, Y, Width, Height float32
}

// R is a convenience function to create a Rect.
func R(x, y, w, h float32) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// RectFromImage converts an image.Rectangle.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{
		X:      float32(r.Min.X),
		Y:      float32(r.Min.Y),
		Width:  float32(r.Dx()),
		Height: float32(r.Dy()),
	}
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// Position returns the top-left corner.
func (r Rect) Position() Vec2 {
	return Vec2{X: r.X, Y: r.Y}
}

// Size returns width and height as a vector.
func (r Rect) Size() Vec2 {
	return Vec2{X: r.Width, Y: r.Height}
}

// Offset returns r translated by d.
func (r Rect) Offset(d Vec2) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Normalize returns r with non-negative Width and Height covering the same
// area, together with the effects that restore the original orientation.
func (r Rect) Normalize() (Rect, Effects) {
	var fx Effects
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
		fx |= FlipHorizontal
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
		fx |= FlipVertical
	}
	return r, fx
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect{%g,%g %gx%g}", r.X, r.Y, r.Width, r.Height)
}
