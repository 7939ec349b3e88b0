package sprite

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// DeviceResources holds resources shared by every batch drawing to one
// device: the 1x1 white texture used by shapes and the lock that serializes
// map..draw sequences on the device.
//
// Create it once per device with NewDeviceResources and release it with
// Close after the last batch using it is closed.
type DeviceResources struct {
	// mu serializes MapVertices..DrawIndexed across batches.
	mu sync.Mutex

	white BoundTexture

	closeOnce sync.Once
	closeErr  error
}

// NewDeviceResources creates device-scoped resources. A nil creator yields
// resources without a white texture; shape drawing then fails with
// ErrNoDeviceResources.
func NewDeviceResources(creator TextureCreator) (*DeviceResources, error) {
	r := &DeviceResources{}
	if creator == nil {
		return r, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	white, err := creator.NewTexture(img, "sprite_white")
	if err != nil {
		return nil, fmt.Errorf("sprite: create white texture: %w", err)
	}
	r.white = white
	return r, nil
}

// WhiteTexture returns the 1x1 white texture, or nil.
func (r *DeviceResources) WhiteTexture() BoundTexture {
	return r.white
}

// Close releases the white texture. Close is safe to call multiple times.
func (r *DeviceResources) Close() error {
	r.closeOnce.Do(func() {
		if rel, ok := r.white.(Releaser); ok {
			r.closeErr = rel.Release()
		}
		r.white = nil
	})
	return r.closeErr
}
