package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for atlas operations.
var (
	// ErrImageTooLarge is returned when an image cannot fit an empty page.
	ErrImageTooLarge = errors.New("atlas: image larger than page")

	// ErrEmptyImage is returned for images with zero area.
	ErrEmptyImage = errors.New("atlas: empty image")

	// ErrDuplicateName is returned when a name is already packed.
	ErrDuplicateName = errors.New("atlas: duplicate texture name")

	// ErrDecode is returned when the input stream is not a supported image.
	ErrDecode = errors.New("atlas: cannot decode image")

	// ErrNilCreator is returned by GenerateTextureArray for a nil creator.
	ErrNilCreator = errors.New("atlas: nil texture array creator")

	// ErrNoPages is returned by GenerateTextureArray when nothing was packed.
	ErrNoPages = errors.New("atlas: no pages to upload")

	// ErrInvalidManifest is returned by DecodeManifest for unsupported or
	// inconsistent manifests.
	ErrInvalidManifest = errors.New("atlas: invalid manifest")
)

// FullError is returned when every page is full and no new page may be
// opened.
type FullError struct {
	Name     string
	Pages    int
	MaxPages int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("atlas: cannot place %q: %d of %d pages full", e.Name, e.Pages, e.MaxPages)
}

// ErrAtlasFull matches any *FullError with errors.Is.
var ErrAtlasFull = errors.New("atlas: all pages full")

// Is reports whether target is ErrAtlasFull.
func (e *FullError) Is(target error) bool {
	return target == ErrAtlasFull
}
