package text

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// glyphImage is a rasterized glyph as premultiplied white coverage.
type glyphImage struct {
	// img is nil for glyphs without outline, such as spaces.
	img *image.RGBA

	// bounds is the pixel box relative to the pen position on the
	// baseline, y down.
	bounds image.Rectangle
}

// rasterizeGlyph loads the outline of gid at ppem and fills it with
// vector.Rasterizer.
func rasterizeGlyph(f *sfnt.Font, buf *sfnt.Buffer, gid uint16, ppem fixed.Int26_6) (glyphImage, error) {
	segs, err := f.LoadGlyph(buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return glyphImage{}, fmt.Errorf("text: load glyph %d: %w", gid, err)
	}
	if len(segs) == 0 {
		return glyphImage{}, nil
	}

	b := segs.Bounds()
	bounds := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	if bounds.Empty() {
		return glyphImage{}, nil
	}

	// Outline coordinates are moved so bounds.Min lands on the mask origin.
	ox, oy := float32(-bounds.Min.X), float32(-bounds.Min.Y)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 + ox, float32(p.Y)/64 + oy
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.DrawOp = xdraw.Src
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			z.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	// White premultiplied by coverage, tinted by the vertex color.
	img := image.NewRGBA(mask.Bounds())
	xdraw.DrawMask(img, img.Bounds(), image.White, image.Point{}, mask, image.Point{}, xdraw.Src)
	return glyphImage{img: img, bounds: bounds}, nil
}
