package text

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed TrueType or OpenType font. Outlines are read through
// sfnt and shaping runs on go-text, so the data is parsed once by each.
//
// Font is safe for concurrent use.
type Font struct {
	outlines *sfnt.Font
	shaping  *font.Font
	name     string
}

// NewFont parses font data. The data slice is not retained.
func NewFont(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	outlines, err := opentype.Parse(bytes.Clone(data))
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font for shaping: %w", err)
	}

	f := &Font{outlines: outlines, shaping: face.Font}
	f.name = fontName(outlines)
	return f, nil
}

// NewFontFromFile loads a font file.
func NewFontFromFile(path string) (*Font, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	return NewFont(data)
}

// Name returns the family name, or the full name when the family is unset.
func (f *Font) Name() string {
	return f.name
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.outlines.NumGlyphs()
}

func fontName(f *sfnt.Font) string {
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if name, err := f.Name(nil, id); err == nil && name != "" {
			return name
		}
	}
	return "Unknown Font"
}
