// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/wgpu/hal"
)

// Offscreen is an RGBA8 render target that can be read back to the CPU.
// It is used for headless rendering and tests.
type Offscreen struct {
	dev    *Device
	width  int
	height int

	color     hal.Texture
	colorView hal.TextureView
	depth     hal.Texture
	depthView hal.TextureView
}

// NewOffscreen creates a width x height color target, plus a depth target
// in Config.DepthFormat when withDepth is set.
func (d *Device) NewOffscreen(width, height int, withDepth bool) (*Offscreen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wgpu: invalid offscreen size %dx%d", width, height)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	o := &Offscreen{dev: d, width: width, height: height}
	size := hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1} //nolint:gosec // positive

	var err error
	o.color, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sprite_offscreen_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create offscreen color: %w", err)
	}
	o.colorView, err = d.device.CreateTextureView(o.color, &hal.TextureViewDescriptor{
		Label: "sprite_offscreen_color_view",
	})
	if err != nil {
		o.destroy()
		return nil, fmt.Errorf("wgpu: create offscreen color view: %w", err)
	}
	if !withDepth {
		return o, nil
	}

	o.depth, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sprite_offscreen_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.config.DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		o.destroy()
		return nil, fmt.Errorf("wgpu: create offscreen depth: %w", err)
	}
	o.depthView, err = d.device.CreateTextureView(o.depth, &hal.TextureViewDescriptor{
		Label: "sprite_offscreen_depth_view",
	})
	if err != nil {
		o.destroy()
		return nil, fmt.Errorf("wgpu: create offscreen depth view: %w", err)
	}
	return o, nil
}

// Size returns the target dimensions.
func (o *Offscreen) Size() (width, height int) { return o.width, o.height }

// Target returns a FrameTarget drawing into o. When clear is set the color
// attachment is cleared to c first.
func (o *Offscreen) Target(clear bool, c sprite.Color) FrameTarget {
	return FrameTarget{
		View:       o.colorView,
		Format:     gputypes.TextureFormatRGBA8Unorm,
		DepthView:  o.depthView,
		Width:      o.width,
		Height:     o.height,
		Clear:      clear,
		ClearColor: c,
	}
}

// Release destroys the target textures.
func (o *Offscreen) Release() {
	o.dev.mu.Lock()
	defer o.dev.mu.Unlock()
	if o.dev.closed {
		return
	}
	o.destroy()
}

func (o *Offscreen) destroy() {
	dev := o.dev.device
	if o.depthView != nil {
		dev.DestroyTextureView(o.depthView)
		o.depthView = nil
	}
	if o.depth != nil {
		dev.DestroyTexture(o.depth)
		o.depth = nil
	}
	if o.colorView != nil {
		dev.DestroyTextureView(o.colorView)
		o.colorView = nil
	}
	if o.color != nil {
		dev.DestroyTexture(o.color)
		o.color = nil
	}
}

// copyPitchAlignment is the row alignment required by texture-to-buffer
// copies.
const copyPitchAlignment = 256

// ReadPixels copies the color attachment of o into a new image.
// It must not be called while a frame is being recorded.
func (d *Device) ReadPixels(o *Offscreen) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if d.frame != nil {
		return nil, ErrFrameInProgress
	}
	if o == nil || o.dev != d || o.color == nil {
		return nil, ErrForeignBinding
	}

	w, h := uint32(o.width), uint32(o.height) //nolint:gosec // positive
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create readback buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(o.color, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.color, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.color,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, o.width, o.height))
	for row := range o.height {
		src := row * int(alignedBytesPerRow)
		copy(img.Pix[row*img.Stride:row*img.Stride+int(bytesPerRow)], readback[src:src+int(bytesPerRow)])
	}
	return img, nil
}
