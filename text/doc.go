// Package text turns strings into glyph sprites for sprite.Batch.DrawText.
//
// A Font is parsed once and shared. A Face is a font at one size; it shapes
// text with the go-text HarfBuzz shaper, rasterizes each glyph once into a
// private atlas and uploads changed atlas pages through a
// sprite.TextureCreator:
//
//	f, err := text.NewFont(goregular.TTF)
//	face, err := text.NewFace(f, device, text.FaceOptions{Size: 16})
//	...
//	batch.DrawText(face, "Hello", sprite.V2(10, 30), sprite.White)
//
// Text is normalized to NFC and split into bidi runs before shaping, so
// mixed-direction strings lay out in visual order.
package text
