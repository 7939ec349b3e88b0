package sprite

// Glyph is one positioned glyph image.
type Glyph struct {
	// Texture holds the glyph image.
	Texture Texture

	// Source is the glyph rectangle relative to Texture.
	Source Rect

	// Bounds is the destination rectangle relative to the pen position on
	// the baseline.
	Bounds Rect
}

// GlyphSource lays out text and reports each visible glyph in drawing
// order. Package text provides an implementation.
type GlyphSource interface {
	Glyphs(text string, fn func(Glyph) error) error
}

// DrawText queues one sprite per visible glyph of text, with the baseline
// starting at pos.
func (b *Batch) DrawText(src GlyphSource, text string, pos Vec2, color Color) error {
	if !b.begun.Load() {
		return ErrNotBegun
	}
	return src.Glyphs(text, func(g Glyph) error {
		return b.Draw(g.Texture, DrawOptions{
			Destination: g.Bounds.Offset(pos),
			Source:      g.Source,
			Color:       color,
			Opacity:     1,
		})
	})
}
