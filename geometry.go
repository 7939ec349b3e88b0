package sprite

import "math"

// cornerOrder maps output vertex slots (TL, TR, BR, BL) to corner indices.
// Corner index bit 0 is the right edge, bit 1 the bottom edge.
var cornerOrder = [VerticesPerSprite]uint8{0, 1, 3, 2}

// writeSprite writes the four vertices of s into dst.
func writeSprite(dst []Vertex, s *SpriteInfo, t *TextureInfo, halfTexel bool) {
	_ = dst[3]

	src := s.Source
	u0 := src.X * t.TexelScale.X
	v0 := src.Y * t.TexelScale.Y
	u1 := (src.X + src.Width) * t.TexelScale.X
	v1 := (src.Y + src.Height) * t.TexelScale.Y
	if halfTexel {
		hx, hy := 0.5*t.TexelScale.X, 0.5*t.TexelScale.Y
		u0, u1 = u0+hx, u1-hx
		v0, v1 = v0+hy, v1-hy
	}
	uv := [4][2]float32{{u0, v0}, {u1, v0}, {u0, v1}, {u1, v1}}

	c := s.Color.Premultiplied(s.Opacity)
	layer := float32(s.Index)

	var pos [4]Vec2
	if s.Shape == ShapeTriangle {
		pos = [4]Vec2{s.Points[0], s.Points[1], s.Points[2], s.Points[2]}
	} else {
		pos = quadCorners(s)
	}

	for slot, corner := range cornerOrder {
		v := &dst[slot]
		v.X, v.Y = pos[slot].X, pos[slot].Y
		v.R, v.G, v.B, v.A = c.R, c.G, c.B, c.A
		tc := uv[corner^uint8(s.Effects&FlipBoth)]
		v.U, v.V = tc[0], tc[1]
		v.Depth = s.Depth
		v.Layer = layer
	}
}

// quadCorners returns the TL, TR, BR, BL positions of a quad sprite,
// rotated around its normalized origin.
func quadCorners(s *SpriteInfo) [4]Vec2 {
	d := s.Destination
	ox, oy := -s.Origin.X*d.Width, -s.Origin.Y*d.Height
	lx := [4]float32{ox, ox + d.Width, ox + d.Width, ox}
	ly := [4]float32{oy, oy, oy + d.Height, oy + d.Height}

	var out [4]Vec2
	if s.Rotation == 0 {
		for i := range out {
			out[i] = Vec2{X: d.X + lx[i], Y: d.Y + ly[i]}
		}
		return out
	}

	sin, cos := math.Sincos(float64(s.Rotation))
	sn, cs := float32(sin), float32(cos)
	for i := range out {
		out[i] = Vec2{
			X: d.X + lx[i]*cs - ly[i]*sn,
			Y: d.Y + lx[i]*sn + ly[i]*cs,
		}
	}
	return out
}

// fillVertices writes entries order[start:end] (or start:end when order is
// nil) into dst, four vertices each.
func (q *spriteQueue) fillVertices(dst []Vertex, order []int32, start, end int, halfTexel bool) {
	for i := start; i < end; i++ {
		idx := i
		if order != nil {
			idx = int(order[i])
		}
		o := (i - start) * VerticesPerSprite
		writeSprite(dst[o:o+VerticesPerSprite], &q.sprites[idx], &q.textures[idx], halfTexel)
	}
}
