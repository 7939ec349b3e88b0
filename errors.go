package sprite

import "errors"

// Session errors. They report misuse and are returned immediately.
var (
	// ErrAlreadyBegun is returned by Begin when a session is already open.
	ErrAlreadyBegun = errors.New("sprite: Begin called while a batch is already open")

	// ErrNotBegun is returned by draw calls and End outside a session.
	ErrNotBegun = errors.New("sprite: batch not begun")

	// ErrBatchClosed is returned after Close.
	ErrBatchClosed = errors.New("sprite: batch closed")

	// ErrNilTexture is returned when a draw call receives a nil texture.
	ErrNilTexture = errors.New("sprite: nil texture")

	// ErrUnknownSortMode is returned by Begin for an undefined SortMode.
	ErrUnknownSortMode = errors.New("sprite: unknown sort mode")
)

// Geometry errors.
var (
	// ErrVertexCount is returned when a polygon has too few vertices.
	ErrVertexCount = errors.New("sprite: vertex count out of range")

	// ErrInvalidSegments is returned when a circle or arc has too few segments.
	ErrInvalidSegments = errors.New("sprite: segment count out of range")

	// ErrInvalidViewport is returned by Resize for non-positive sizes.
	ErrInvalidViewport = errors.New("sprite: viewport size must be positive")
)

// Resource errors.
var (
	// ErrUnboundTexture is returned when a texture cannot provide a device binding.
	ErrUnboundTexture = errors.New("sprite: texture has no device binding")

	// ErrNoTextureArray is returned when an atlas texture is drawn before
	// the atlas texture array was generated.
	ErrNoTextureArray = errors.New("sprite: atlas texture array not generated")

	// ErrNoDeviceResources is returned by shape drawing when the batch has
	// no white texture.
	ErrNoDeviceResources = errors.New("sprite: shape drawing requires device resources")

	// ErrNilDevice is returned by NewBatch for a nil device.
	ErrNilDevice = errors.New("sprite: nil device")
)
