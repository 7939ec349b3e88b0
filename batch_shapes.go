package sprite

import (
	"fmt"
	"math"
)

// Shapes are drawn with the 1x1 white texture of the device resources.
// Lines are rotated filled rectangles and filled polygons are triangle fans,
// so only convex polygons fill correctly. Every shape takes its color as is
// and multiplies opacity into it.

func (b *Batch) white() (Texture, error) {
	if !b.begun.Load() {
		return nil, ErrNotBegun
	}
	w := b.resources.WhiteTexture()
	if w == nil {
		return nil, ErrNoDeviceResources
	}
	return w, nil
}

// fillRect draws the white texture stretched over r.
func (b *Batch) fillRect(w Texture, r Rect, color Color, opacity float32) error {
	return b.Draw(w, DrawOptions{Destination: r, Color: color, Opacity: opacity})
}

// DrawFillRectangle fills r with color.
func (b *Batch) DrawFillRectangle(r Rect, color Color, opacity float32) error {
	w, err := b.white()
	if err != nil {
		return err
	}
	return b.fillRect(w, r, color, opacity)
}

// DrawRectangle outlines r with lines of the given thickness drawn inside r.
func (b *Batch) DrawRectangle(r Rect, color Color, thickness, opacity float32) error {
	w, err := b.white()
	if err != nil {
		return err
	}
	r, _ = r.Normalize()
	t := min(max(thickness, 1), r.Width/2, r.Height/2)
	// top, bottom, left, right
	edges := [4]Rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + r.Height - t, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
		{X: r.X + r.Width - t, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
	}
	for _, e := range edges {
		if e.Empty() {
			continue
		}
		if err := b.fillRect(w, e, color, opacity); err != nil {
			return err
		}
	}
	return nil
}

// DrawLine draws a line of the given width centered on the segment p1-p2.
func (b *Batch) DrawLine(p1, p2 Vec2, color Color, width, opacity float32) error {
	w, err := b.white()
	if err != nil {
		return err
	}
	return b.drawLine(w, p1, p2, color, width, opacity)
}

func (b *Batch) drawLine(w Texture, p1, p2 Vec2, color Color, width, opacity float32) error {
	if width <= 0 {
		width = 1
	}
	d := p2.Sub(p1)
	length := d.Length()
	if length == 0 {
		return nil
	}
	return b.Draw(w, DrawOptions{
		Destination: Rect{X: p1.X, Y: p1.Y, Width: length, Height: width},
		Origin:      Vec2{Y: 0.5},
		Rotation:    d.Angle(),
		Color:       color,
		Opacity:     opacity,
	})
}

// DrawPolygon outlines a polygon. Two points draw a single line; more
// points draw a closed outline.
func (b *Batch) DrawPolygon(points []Vec2, color Color, width, opacity float32) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: polygon outline has %d vertices, need at least 2", ErrVertexCount, len(points))
	}
	return b.polyline(points, len(points) > 2, color, width, opacity)
}

func (b *Batch) polyline(points []Vec2, closed bool, color Color, width, opacity float32) error {
	w, err := b.white()
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(points); i++ {
		if err := b.drawLine(w, points[i], points[i+1], color, width, opacity); err != nil {
			return err
		}
	}
	if closed {
		return b.drawLine(w, points[len(points)-1], points[0], color, width, opacity)
	}
	return nil
}

// DrawFillPolygon fills a convex polygon as a triangle fan around points[0].
func (b *Batch) DrawFillPolygon(points []Vec2, color Color, opacity float32) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: filled polygon has %d vertices, need at least 3", ErrVertexCount, len(points))
	}
	w, err := b.white()
	if err != nil {
		return err
	}
	for i := 1; i+1 < len(points); i++ {
		if err := b.fillTriangle(w, points[0], points[i], points[i+1], color, opacity); err != nil {
			return err
		}
	}
	return nil
}

// DrawTriangle outlines the triangle p0 p1 p2.
func (b *Batch) DrawTriangle(p0, p1, p2 Vec2, color Color, width, opacity float32) error {
	return b.polyline([]Vec2{p0, p1, p2}, true, color, width, opacity)
}

// DrawFillTriangle fills the triangle p0 p1 p2.
func (b *Batch) DrawFillTriangle(p0, p1, p2 Vec2, color Color, opacity float32) error {
	w, err := b.white()
	if err != nil {
		return err
	}
	return b.fillTriangle(w, p0, p1, p2, color, opacity)
}

func (b *Batch) fillTriangle(w Texture, p0, p1, p2 Vec2, color Color, opacity float32) error {
	info, err := b.resolve(w)
	if err != nil {
		return err
	}
	s := SpriteInfo{
		Source:  info.Bounds,
		Color:   color,
		Opacity: opacity,
		Index:   info.Index,
		Shape:   ShapeTriangle,
		Points:  [3]Vec2{p0, p1, p2},
	}
	b.queue.append(&s, &info)
	return nil
}

// DrawCircle outlines a circle approximated by segments lines.
func (b *Batch) DrawCircle(center Vec2, radius float32, segments int, color Color, width, opacity float32) error {
	if segments < 3 {
		return fmt.Errorf("%w: circle has %d segments, need at least 3", ErrInvalidSegments, segments)
	}
	return b.polyline(arcPoints(center, radius, 0, 2*math.Pi, segments, false), true, color, width, opacity)
}

// DrawFillCircle fills a circle approximated by a polygon of segments sides.
func (b *Batch) DrawFillCircle(center Vec2, radius float32, segments int, color Color, opacity float32) error {
	if segments < 3 {
		return fmt.Errorf("%w: circle has %d segments, need at least 3", ErrInvalidSegments, segments)
	}
	return b.DrawFillPolygon(arcPoints(center, radius, 0, 2*math.Pi, segments, false), color, opacity)
}

// DrawArc draws an open arc from angle start sweeping by sweep radians.
func (b *Batch) DrawArc(center Vec2, radius, start, sweep float32, segments int, color Color, width, opacity float32) error {
	if segments < 1 {
		return fmt.Errorf("%w: arc has %d segments, need at least 1", ErrInvalidSegments, segments)
	}
	return b.polyline(arcPoints(center, radius, start, sweep, segments, true), false, color, width, opacity)
}

// arcPoints returns segments points on the arc, plus the end point when
// open is set.
func arcPoints(center Vec2, radius, start, sweep float32, segments int, open bool) []Vec2 {
	n := segments
	if open {
		n++
	}
	points := make([]Vec2, n)
	step := sweep / float32(segments)
	for i := range points {
		points[i] = center.Polar(radius, start+step*float32(i))
	}
	return points
}
