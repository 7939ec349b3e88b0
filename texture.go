package sprite

import "image"

// Texture is anything a batch can draw from.
type Texture interface {
	// ID is the 64-bit identity used for run detection and caching.
	ID() uint64

	// Size returns the drawable size in pixels.
	Size() (width, height int)
}

// BoundTexture is a Texture backed by its own device binding.
type BoundTexture interface {
	Texture

	// Binding returns the shader-visible view handle of the device.
	Binding() any
}

// Releaser is implemented by textures that own device memory.
type Releaser interface {
	Release() error
}

// TextureCreator creates and updates device textures from images.
type TextureCreator interface {
	NewTexture(img *image.RGBA, label string) (BoundTexture, error)
	UpdateTexture(tex BoundTexture, img *image.RGBA) error
}

// TextureInfo is the resolved, cached description of a texture.
type TextureInfo struct {
	// Binding is the device view handle bound for the draw.
	Binding any

	// ID identifies the bound texture. Consecutive sprites with equal IDs
	// share a draw call.
	ID uint64

	// Width and Height are the dimensions of the bound texture.
	Width, Height int

	// TexelScale is (1/Width, 1/Height).
	TexelScale Vec2

	// Bounds is the region of the bound texture the Texture occupies.
	// Sprite source rectangles are relative to it.
	Bounds Rect

	// Index is the texture array slice.
	Index int
}

func newTextureInfo(binding any, id uint64, w, h int) TextureInfo {
	info := TextureInfo{
		Binding: binding,
		ID:      id,
		Width:   w,
		Height:  h,
		Bounds:  Rect{Width: float32(w), Height: float32(h)},
	}
	if w > 0 && h > 0 {
		info.TexelScale = Vec2{X: 1 / float32(w), Y: 1 / float32(h)}
	}
	return info
}
