package sprite

import "math"

// Vec2 is a 2D point or vector in pixels.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (p Vec2) Add(q Vec2) Vec2 {
	return Vec2{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two vectors.
func (p Vec2) Sub(q Vec2) Vec2 {
	return Vec2{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the vector scaled by a scalar.
func (p Vec2) Mul(s float32) Vec2 {
	return Vec2{X: p.X * s, Y: p.Y * s}
}

// Scale multiplies component-wise.
func (p Vec2) Scale(q Vec2) Vec2 {
	return Vec2{X: p.X * q.X, Y: p.Y * q.Y}
}

// Length returns the length of the vector.
func (p Vec2) Length() float32 {
	return float32(math.Hypot(float64(p.X), float64(p.Y)))
}

// Angle returns the angle of the vector from the positive X axis.
func (p Vec2) Angle() float32 {
	return float32(math.Atan2(float64(p.Y), float64(p.X)))
}

// Rotate rotates the vector by angle radians around the origin.
func (p Vec2) Rotate(angle float32) Vec2 {
	sin, cos := math.Sincos(float64(angle))
	s, c := float32(sin), float32(cos)
	return Vec2{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Polar returns the point at radius r and angle a around p.
func (p Vec2) Polar(r, a float32) Vec2 {
	sin, cos := math.Sincos(float64(a))
	return Vec2{X: p.X + r*float32(cos), Y: p.Y + r*float32(sin)}
}
