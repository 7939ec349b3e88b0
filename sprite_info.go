package sprite

import "strings"

// Effects are flip flags applied to texture coordinates.
// A corner index has bit 0 set on the right edge and bit 1 set on the bottom
// edge; flipping XORs the corner index with the flags.
type Effects uint8

// Flip effects.
const (
	FlipNone       Effects = 0
	FlipHorizontal Effects = 1
	FlipVertical   Effects = 2
	FlipBoth               = FlipHorizontal | FlipVertical
)

func (e Effects) String() string {
	switch e & FlipBoth {
	case FlipNone:
		return "None"
	case FlipHorizontal:
		return "FlipHorizontal"
	case FlipVertical:
		return "FlipVertical"
	default:
		return "FlipBoth"
	}
}

// ShapeKind selects how the four vertices of an entry are produced.
type ShapeKind uint8

const (
	// ShapeQuad is a textured rectangle built from Destination and Origin.
	ShapeQuad ShapeKind = iota

	// ShapeTriangle is a filled triangle built from Points. The fourth
	// vertex repeats the third so the entry stays a (degenerate) quad.
	ShapeTriangle
)

func (k ShapeKind) String() string {
	if k == ShapeTriangle {
		return "Triangle"
	}
	return "Quad"
}

// SpriteInfo is one queued draw.
type SpriteInfo struct {
	// Source is the texel rectangle inside the resolved texture.
	Source Rect

	// Destination holds the origin position (X, Y) and the drawn size.
	// Width and Height are non-negative once queued.
	Destination Rect

	// Origin is the rotation and placement pivot normalized by the source
	// size: (0,0) is the top-left, (1,1) the bottom-right of the sprite.
	Origin Vec2

	// Rotation in radians, clockwise in screen space.
	Rotation float32

	// Depth is written to the vertex and used by depth sort modes.
	Depth float32

	Effects Effects

	// Color is the straight tint. Opacity scales it when vertices are written.
	Color   Color
	Opacity float32

	// Index is the texture array slice.
	Index int

	Shape  ShapeKind
	Points [3]Vec2
}

func (s SpriteInfo) String() string {
	var b strings.Builder
	b.WriteString("SpriteInfo{")
	b.WriteString(s.Shape.String())
	b.WriteString(" dst=")
	b.WriteString(s.Destination.String())
	b.WriteString(" src=")
	b.WriteString(s.Source.String())
	if s.Effects != FlipNone {
		b.WriteString(" ")
		b.WriteString(s.Effects.String())
	}
	b.WriteString("}")
	return b.String()
}
