// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

var (
	// ErrNilDevice is returned when New is called without a HAL device or queue.
	ErrNilDevice = errors.New("wgpu: HAL device or queue is nil")

	// ErrNoHALProvider is returned when a device provider does not expose
	// HAL handles.
	ErrNoHALProvider = errors.New("wgpu: provider does not expose HAL device")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("wgpu: device closed")

	// ErrNoFrame is returned when drawing outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("wgpu: no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame when a frame is open.
	ErrFrameInProgress = errors.New("wgpu: frame already in progress")

	// ErrNotMapped is returned by UnmapVertices without a prior MapVertices.
	ErrNotMapped = errors.New("wgpu: vertices not mapped")

	// ErrAlreadyMapped is returned by MapVertices while a mapping is open.
	ErrAlreadyMapped = errors.New("wgpu: vertices already mapped")

	// ErrTooManyVertices is returned when a mapping exceeds the index buffer.
	ErrTooManyVertices = errors.New("wgpu: vertex count exceeds index buffer")

	// ErrNoTexture is returned by DrawIndexed before any BindTexture.
	ErrNoTexture = errors.New("wgpu: no texture bound")

	// ErrForeignBinding is returned when BindTexture receives a binding
	// created by another device.
	ErrForeignBinding = errors.New("wgpu: binding not created by this device")

	// ErrNoDepthTarget is returned when a depth state is used without a
	// depth view in the frame target.
	ErrNoDepthTarget = errors.New("wgpu: depth state requires a depth view")

	// ErrInvalidImage is returned for nil or empty images.
	ErrInvalidImage = errors.New("wgpu: image is nil or empty")

	// ErrSizeMismatch is returned when an update or array page differs in size.
	ErrSizeMismatch = errors.New("wgpu: image size mismatch")

	// ErrReleased is returned when using a released texture.
	ErrReleased = errors.New("wgpu: texture released")

	// ErrFenceTimeout is returned when the GPU does not finish a frame in time.
	ErrFenceTimeout = errors.New("wgpu: timed out waiting for frame")
)
