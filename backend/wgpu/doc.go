// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu draws sprite batches on a gogpu/wgpu HAL device.
//
// Device implements [sprite.Device], [sprite.TextureCreator] and
// [atlas.ArrayCreator]. Draws are recorded between BeginFrame and EndFrame
// and submitted as one render pass:
//
//	dev, err := wgpu.New(halDevice, halQueue, wgpu.Config{})
//	batch, err := sprite.NewBatch(dev)
//
//	dev.BeginFrame(wgpu.FrameTarget{View: view, Width: w, Height: h})
//	batch.Begin(sprite.BeginOptions{})
//	batch.DrawAt(tex, sprite.Vec2{X: 10, Y: 10}, sprite.White)
//	batch.End()
//	err = dev.EndFrame()
//
// Every texture is bound as a 2D array view, so plain textures and atlas
// texture arrays share one shader and one pipeline per state.
package wgpu
