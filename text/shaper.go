package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// shapedGlyph is a glyph id with its pen offset and advance in pixels.
type shapedGlyph struct {
	gid        uint16
	xOff, yOff float32
	advance    float32
}

// HarfbuzzShaper has internal mutable state and is not safe for concurrent
// use, so instances are pooled.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// shapeRun shapes one directional run at size pixels per em.
// go-text returns right-to-left runs in visual order.
func shapeRun(f *Font, r run, size fixed.Int26_6, lang language.Language) []shapedGlyph {
	if len(r.text) == 0 {
		return nil
	}
	dir := di.DirectionLTR
	if r.rtl {
		dir = di.DirectionRTL
	}

	// font.Face is not safe for concurrent use; it is cheap to create over
	// the shared Font.
	input := shaping.Input{
		Text:      r.text,
		RunStart:  0,
		RunEnd:    len(r.text),
		Direction: dir,
		Face:      font.NewFace(f.shaping),
		Size:      size,
		Script:    detectScript(r.text),
		Language:  lang,
	}

	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	glyphs := make([]shapedGlyph, len(output.Glyphs))
	for i, g := range output.Glyphs {
		glyphs[i] = shapedGlyph{
			gid:     uint16(g.GlyphID), //nolint:gosec // glyph ids fit uint16 in TrueType
			xOff:    fixedToFloat(g.XOffset),
			yOff:    -fixedToFloat(g.YOffset),
			advance: fixedToFloat(g.Advance),
		}
	}
	return glyphs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
