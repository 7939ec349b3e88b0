package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNilFont is returned by NewFace without a font.
	ErrNilFont = errors.New("text: nil font")

	// ErrNilCreator is returned by NewFace without a texture creator.
	ErrNilCreator = errors.New("text: nil texture creator")

	// ErrInvalidSize is returned for a non-positive face size or DPI.
	ErrInvalidSize = errors.New("text: invalid face size")

	// ErrFaceClosed is returned by a Face after Close.
	ErrFaceClosed = errors.New("text: face closed")
)
