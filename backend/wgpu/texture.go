// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/wgpu/hal"
)

// binding is the shader-visible view handed to the batch as
// TextureInfo.Binding.
type binding struct {
	owner *Device
	view  hal.TextureView
	live  bool
}

// gpuTexture owns a 2D array texture and its array view.
type gpuTexture struct {
	dev     *Device
	id      uint64
	label   string
	width   int
	height  int
	layers  int
	tex     hal.Texture
	binding *binding

	once sync.Once
}

// Texture is a single-layer device texture.
// It implements sprite.BoundTexture and sprite.Releaser.
type Texture struct {
	*gpuTexture
}

// TextureArray is a layered device texture built from atlas pages.
// It implements atlas.TextureArray.
type TextureArray struct {
	*gpuTexture
}

var (
	_ sprite.BoundTexture = (*Texture)(nil)
	_ sprite.Releaser     = (*Texture)(nil)
	_ atlas.TextureArray  = (*TextureArray)(nil)
)

// ID returns the texture identity.
func (t *gpuTexture) ID() uint64 { return t.id }

// Size returns the texture dimensions in pixels.
func (t *gpuTexture) Size() (width, height int) { return t.width, t.height }

// Layers returns the number of array slices.
func (t *gpuTexture) Layers() int { return t.layers }

// Label returns the debug label.
func (t *gpuTexture) Label() string { return t.label }

// Binding returns the view bound by Device.BindTexture.
func (t *gpuTexture) Binding() any { return t.binding }

// Release destroys the device texture. Release is idempotent.
func (t *gpuTexture) Release() error {
	t.once.Do(func() {
		t.dev.releaseTexture(t)
	})
	return nil
}

func (t *gpuTexture) released() bool {
	return t.tex == nil
}

// NewTexture uploads img as a single-layer texture.
func (d *Device) NewTexture(img *image.RGBA, label string) (sprite.BoundTexture, error) {
	if img == nil || img.Rect.Empty() {
		return nil, ErrInvalidImage
	}
	t, err := d.createTexture([]*image.RGBA{img}, label)
	if err != nil {
		return nil, err
	}
	return &Texture{gpuTexture: t}, nil
}

// UpdateTexture replaces the pixels of a texture created by NewTexture.
// img must have the texture's size.
func (d *Device) UpdateTexture(tex sprite.BoundTexture, img *image.RGBA) error {
	t, ok := tex.(*Texture)
	if !ok || t.dev != d {
		return ErrForeignBinding
	}
	if img == nil {
		return ErrInvalidImage
	}
	if img.Rect.Dx() != t.width || img.Rect.Dy() != t.height {
		return fmt.Errorf("%w: texture %dx%d, image %dx%d",
			ErrSizeMismatch, t.width, t.height, img.Rect.Dx(), img.Rect.Dy())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if t.released() {
		return ErrReleased
	}
	d.writeLayer(t.tex, 0, img)
	return nil
}

// NewTextureArray uploads equally sized pages as the slices of one array
// texture.
func (d *Device) NewTextureArray(pages []*image.RGBA, label string) (atlas.TextureArray, error) {
	if len(pages) == 0 {
		return nil, ErrInvalidImage
	}
	for i, p := range pages {
		if p == nil || p.Rect.Empty() {
			return nil, fmt.Errorf("%w: page %d", ErrInvalidImage, i)
		}
		if p.Rect.Size() != pages[0].Rect.Size() {
			return nil, fmt.Errorf("%w: page %d is %v, page 0 is %v",
				ErrSizeMismatch, i, p.Rect.Size(), pages[0].Rect.Size())
		}
	}
	t, err := d.createTexture(pages, label)
	if err != nil {
		return nil, err
	}
	return &TextureArray{gpuTexture: t}, nil
}

// createTexture creates an RGBA8 array texture with one slice per page and
// uploads the pages.
func (d *Device) createTexture(pages []*image.RGBA, label string) (*gpuTexture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	w, h := pages[0].Rect.Dx(), pages[0].Rect.Dy()
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(w), //nolint:gosec // image sizes are positive
			Height:             uint32(h), //nolint:gosec // image sizes are positive
			DepthOrArrayLayers: uint32(len(pages)),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label + "_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(len(pages)),
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", label, err)
	}
	for i, p := range pages {
		d.writeLayer(tex, i, p)
	}

	t := &gpuTexture{
		dev:     d,
		id:      d.nextTextureID(),
		label:   label,
		width:   w,
		height:  h,
		layers:  len(pages),
		tex:     tex,
		binding: &binding{owner: d, view: view, live: true},
	}
	d.live[t] = struct{}{}
	slogger().Debug("wgpu: texture created",
		"label", label, "width", w, "height", h, "layers", len(pages))
	return t, nil
}

// writeLayer uploads img into array slice layer. d.mu must be held.
func (d *Device) writeLayer(tex hal.Texture, layer int, img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: uint32(layer)}, //nolint:gosec // layer < page count
		},
		tightPixels(img),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * 4), //nolint:gosec // image sizes are positive
			RowsPerImage: uint32(h),     //nolint:gosec // image sizes are positive
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}, //nolint:gosec // image sizes are positive
	)
}

// tightPixels returns img's pixels with rows packed at 4*width bytes.
func tightPixels(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 {
		start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
		return img.Pix[start : start+w*h*4]
	}
	out := make([]byte, 0, w*h*4)
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		off := img.PixOffset(img.Rect.Min.X, y)
		out = append(out, img.Pix[off:off+w*4]...)
	}
	return out
}

// releaseTexture destroys the view and texture of t. Views referenced by a
// pending frame stay alive until the frame ends.
func (d *Device) releaseTexture(t *gpuTexture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.tex == nil || d.closed {
		return
	}
	if d.frame != nil {
		d.frame.deferred = append(d.frame.deferred, deferredTexture{tex: t.tex, view: t.binding.view})
	} else {
		d.device.DestroyTextureView(t.binding.view)
		d.device.DestroyTexture(t.tex)
	}
	t.tex = nil
	t.binding.live = false
	delete(d.live, t)
}

// deferredTexture is a released texture still referenced by recorded draws.
type deferredTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

// bindingOf validates a binding passed to BindTexture.
func (d *Device) bindingOf(v any) (*binding, error) {
	b, ok := v.(*binding)
	if !ok || b == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignBinding, v)
	}
	if b.owner != d {
		return nil, ErrForeignBinding
	}
	if !b.live {
		return nil, ErrReleased
	}
	return b, nil
}
