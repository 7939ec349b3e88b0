package sprite

import (
	"fmt"
	"runtime"
	"strings"
)

// DrawOptions describes one textured sprite. Every field is used as given;
// start from DefaultDrawOptions for an unscaled, untinted, opaque sprite.
type DrawOptions struct {
	// Position is where the origin lands. Ignored when Destination is set.
	Position Vec2

	// Destination is the drawn rectangle, X and Y being where the origin
	// lands. Negative sizes flip the sprite. Empty means Position plus the
	// scaled source size.
	Destination Rect

	// Source is the texel rectangle relative to the texture. Empty means
	// the whole texture.
	Source Rect

	// Scale multiplies the source size when Destination is empty.
	Scale Vec2

	// Origin is the pivot in source pixels.
	Origin Vec2

	// Rotation in radians around Origin.
	Rotation float32

	Effects Effects
	Depth   float32

	// Color tints the texture.
	Color Color

	// Opacity is multiplied into Color when vertices are written.
	Opacity float32
}

// DefaultDrawOptions returns options drawing the whole texture at the
// origin with scale 1, a White tint and full opacity.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{Scale: Vec2{X: 1, Y: 1}, Color: White, Opacity: 1}
}

// Draw queues a textured sprite.
func (b *Batch) Draw(tex Texture, o DrawOptions) error {
	if !b.begun.Load() {
		return ErrNotBegun
	}
	if tex == nil {
		return ErrNilTexture
	}
	info, err := b.resolve(tex)
	if err != nil {
		return err
	}

	src := o.Source
	if src.Empty() {
		src = Rect{Width: info.Bounds.Width, Height: info.Bounds.Height}
	}

	dst := o.Destination
	if dst.Empty() {
		dst = Rect{X: o.Position.X, Y: o.Position.Y, Width: src.Width * o.Scale.X, Height: src.Height * o.Scale.Y}
	}

	var origin Vec2
	if src.Width != 0 {
		origin.X = o.Origin.X / src.Width
	}
	if src.Height != 0 {
		origin.Y = o.Origin.Y / src.Height
	}

	s := SpriteInfo{
		Source:      src.Offset(info.Bounds.Position()),
		Destination: dst,
		Origin:      origin,
		Rotation:    o.Rotation,
		Depth:       o.Depth,
		Effects:     o.Effects,
		Color:       o.Color,
		Opacity:     o.Opacity,
		Index:       info.Index,
	}
	foldNegativeSize(&s)
	b.queue.append(&s, &info)
	return nil
}

// DrawAt draws the whole texture unscaled and opaque with its top-left
// corner at pos.
func (b *Batch) DrawAt(tex Texture, pos Vec2, color Color) error {
	o := DefaultDrawOptions()
	o.Position = pos
	o.Color = color
	return b.Draw(tex, o)
}

// DrawRect draws the whole texture stretched over dst.
func (b *Batch) DrawRect(tex Texture, dst Rect, color Color) error {
	o := DefaultDrawOptions()
	o.Destination = dst
	o.Color = color
	return b.Draw(tex, o)
}

// DrawRegion draws the src part of the texture stretched over dst.
func (b *Batch) DrawRegion(tex Texture, src, dst Rect, color Color) error {
	o := DefaultDrawOptions()
	o.Source = src
	o.Destination = dst
	o.Color = color
	return b.Draw(tex, o)
}

// resolve resolves tex through the batch resolver. A nil pointer held in a
// non-nil Texture is reported as ErrNilTexture.
func (b *Batch) resolve(tex Texture) (info TextureInfo, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if re, ok := r.(runtime.Error); !ok || !strings.Contains(re.Error(), "nil pointer dereference") {
			panic(r)
		}
		err = ErrNilTexture
	}()
	info, err = b.resolver.Resolve(tex)
	if err != nil {
		return TextureInfo{}, fmt.Errorf("sprite: resolve texture: %w", err)
	}
	return info, nil
}

// foldNegativeSize makes the destination size non-negative. A negative axis
// becomes a flip on that axis with the normalized origin mirrored, which
// covers the same pixels.
func foldNegativeSize(s *SpriteInfo) {
	if s.Destination.Width < 0 {
		s.Destination.Width = -s.Destination.Width
		s.Origin.X = 1 - s.Origin.X
		s.Effects ^= FlipHorizontal
	}
	if s.Destination.Height < 0 {
		s.Destination.Height = -s.Destination.Height
		s.Origin.Y = 1 - s.Origin.Y
		s.Effects ^= FlipVertical
	}
}
