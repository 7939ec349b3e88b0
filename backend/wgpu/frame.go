// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/wgpu/hal"
)

// FrameTarget is the render pass destination of one frame.
type FrameTarget struct {
	// View is the color attachment.
	View hal.TextureView

	// Format is the format of View. Zero means Config.ColorFormat.
	Format gputypes.TextureFormat

	// DepthView is an optional depth attachment in Config.DepthFormat.
	// Depth states other than DepthNone require it.
	DepthView hal.TextureView

	// Width and Height are the attachment size in pixels.
	Width, Height int

	// Clear clears View to ClearColor before drawing. Otherwise the
	// previous contents are kept.
	Clear      bool
	ClearColor sprite.Color
}

// FrameStats describes a submitted frame.
type FrameStats struct {
	DrawCalls  int
	Vertices   int
	Transforms int
	BindGroups int
}

// drawCmd is one recorded DrawIndexed.
type drawCmd struct {
	key        pipelineKey
	sampler    sprite.SamplerMode
	scissor    image.Rectangle
	uniform    uint64
	view       hal.TextureView
	indexCount uint32
	firstIndex uint32
	baseVertex int32
}

// frame accumulates draws until EndFrame.
type frame struct {
	target   FrameTarget
	vertices []byte
	uniforms []byte
	draws    []drawCmd
	deferred []deferredTexture

	// uniform is the offset of the current transform, or -1 when the
	// transform changed since the last draw.
	uniform int64
	// mappedBase is the first vertex of the last unmapped range.
	mappedBase int
}

// BeginFrame starts recording draws into target.
func (d *Device) BeginFrame(target FrameTarget) error {
	if target.View == nil || target.Width <= 0 || target.Height <= 0 {
		return fmt.Errorf("wgpu: invalid frame target %dx%d", target.Width, target.Height)
	}
	if target.Format == gputypes.TextureFormatUndefined {
		target.Format = d.config.ColorFormat
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.frame != nil {
		return ErrFrameInProgress
	}
	d.frame = &frame{target: target, uniform: -1}
	return nil
}

// InFrame reports whether a frame is being recorded.
func (d *Device) InFrame() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame != nil
}

// LastFrame returns the statistics of the last submitted frame.
func (d *Device) LastFrame() FrameStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// MapVertices returns a CPU view of n vertices. The view is copied into the
// frame's vertex stream by UnmapVertices.
func (d *Device) MapVertices(n int) ([]sprite.Vertex, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkFrame(); err != nil {
		return nil, err
	}
	if d.mapped >= 0 {
		return nil, ErrAlreadyMapped
	}
	if n < 0 || n > d.config.MaxQuads*sprite.VerticesPerSprite {
		return nil, fmt.Errorf("%w: %d", ErrTooManyVertices, n)
	}
	if cap(d.staging) < n {
		d.staging = make([]sprite.Vertex, n)
	}
	d.mapped = n
	return d.staging[:n], nil
}

// UnmapVertices appends the mapped vertices to the frame.
func (d *Device) UnmapVertices() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mapped < 0 {
		return ErrNotMapped
	}
	n := d.mapped
	d.mapped = -1
	if err := d.checkFrame(); err != nil {
		return err
	}
	f := d.frame
	f.mappedBase = len(f.vertices) / sprite.VertexStride
	f.vertices = sprite.AppendVertexBytes(f.vertices, d.staging[:n])
	return nil
}

// SetState sets the state of subsequent draws.
func (d *Device) SetState(s sprite.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkFrame(); err != nil {
		return err
	}
	if s.Depth != sprite.DepthNone && d.frame.target.DepthView == nil {
		return ErrNoDepthTarget
	}
	if _, err := d.pipelines.getOrCreate(d.pipelineKey(s)); err != nil {
		return err
	}
	d.state = s
	return nil
}

// SetTransform sets the world-view-projection matrix of subsequent draws.
func (d *Device) SetTransform(m mgl32.Mat4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transform = m
	d.transformSet = true
	if d.frame != nil {
		d.frame.uniform = -1
	}
}

// BindTexture binds a Texture or TextureArray binding for subsequent draws.
func (d *Device) BindTexture(v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	b, err := d.bindingOf(v)
	if err != nil {
		return err
	}
	d.bound = b
	return nil
}

// DrawIndexed records a draw of the static quad index buffer against the
// last unmapped vertex range.
func (d *Device) DrawIndexed(indexCount, startIndex, baseVertex int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkFrame(); err != nil {
		return err
	}
	if d.bound == nil || !d.bound.live {
		return ErrNoTexture
	}
	maxIndices := d.config.MaxQuads * sprite.IndicesPerSprite
	if indexCount < 0 || startIndex < 0 || startIndex+indexCount > maxIndices {
		return fmt.Errorf("%w: indices [%d, %d) of %d",
			ErrTooManyVertices, startIndex, startIndex+indexCount, maxIndices)
	}
	if indexCount == 0 {
		return nil
	}
	f := d.frame
	if f.uniform < 0 {
		f.uniform = int64(len(f.uniforms))
		f.uniforms = appendTransform(f.uniforms, d.currentTransform())
	}
	//nolint:gosec // counts are bounded by maxIndices and the vertex stream
	f.draws = append(f.draws, drawCmd{
		key:        d.pipelineKey(d.state),
		sampler:    d.state.Sampler,
		scissor:    d.state.Scissor,
		uniform:    uint64(f.uniform),
		view:       d.bound.view,
		indexCount: uint32(indexCount),
		firstIndex: uint32(startIndex),
		baseVertex: int32(f.mappedBase + baseVertex),
	})
	return nil
}

func (d *Device) checkFrame() error {
	if d.closed {
		return ErrClosed
	}
	if d.frame == nil {
		return ErrNoFrame
	}
	return nil
}

func (d *Device) currentTransform() mgl32.Mat4 {
	if !d.transformSet {
		return mgl32.Ident4()
	}
	return d.transform
}

func (d *Device) pipelineKey(s sprite.State) pipelineKey {
	var depthFormat gputypes.TextureFormat
	if d.frame.target.DepthView != nil {
		depthFormat = d.config.DepthFormat
	}
	return keyFor(s, d.frame.target.Format, depthFormat)
}

// appendTransform appends m to dst as a column-major mat4x4<f32> padded to
// one uniform slot.
func appendTransform(dst []byte, m mgl32.Mat4) []byte {
	for _, f := range m {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return append(dst, make([]byte, uniformSlot-transformSize)...)
}

// EndFrame uploads the recorded vertices and transforms, encodes one render
// pass, submits it and waits for completion.
func (d *Device) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkFrame(); err != nil {
		return err
	}
	f := d.frame
	d.frame = nil
	d.mapped = -1
	defer d.destroyDeferred(f)

	if len(f.draws) == 0 && !f.target.Clear {
		d.last = FrameStats{}
		return nil
	}
	stats, err := d.submit(f)
	if err != nil {
		return err
	}
	d.last = stats
	slogger().Debug("wgpu: frame submitted",
		"draws", stats.DrawCalls, "vertices", stats.Vertices, "bind_groups", stats.BindGroups)
	return nil
}

// bindKey identifies the bind group of a draw.
type bindKey struct {
	view    hal.TextureView
	sampler sprite.SamplerMode
	uniform uint64
}

func (d *Device) submit(f *frame) (FrameStats, error) {
	stats := FrameStats{
		DrawCalls:  len(f.draws),
		Vertices:   len(f.vertices) / sprite.VertexStride,
		Transforms: len(f.uniforms) / uniformSlot,
	}

	var err error
	if len(f.vertices) > 0 {
		d.vertexBuf, err = d.ensureBuffer(d.vertexBuf, &d.vertexCap, uint64(len(f.vertices)),
			"sprite_vertices", gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			return stats, err
		}
		d.queue.WriteBuffer(d.vertexBuf, 0, f.vertices)
	}
	if len(f.uniforms) > 0 {
		d.uniformBuf, err = d.ensureBuffer(d.uniformBuf, &d.uniformCap, uint64(len(f.uniforms)),
			"sprite_uniforms", gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			return stats, err
		}
		d.queue.WriteBuffer(d.uniformBuf, 0, f.uniforms)
	}

	groups := make(map[bindKey]hal.BindGroup)
	defer func() {
		for _, g := range groups {
			d.device.DestroyBindGroup(g)
		}
	}()

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_encoder",
	})
	if err != nil {
		return stats, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_frame"); err != nil {
		return stats, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	loadOp := gputypes.LoadOpLoad
	if f.target.Clear {
		loadOp = gputypes.LoadOpClear
	}
	c := f.target.ClearColor
	rpDesc := &hal.RenderPassDescriptor{
		Label: "sprite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       f.target.View,
			LoadOp:     loadOp,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)},
		}},
	}
	if f.target.DepthView != nil {
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              f.target.DepthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}

	rp := encoder.BeginRenderPass(rpDesc)
	if len(f.draws) > 0 {
		rp.SetVertexBuffer(0, d.vertexBuf, 0)
		rp.SetIndexBuffer(d.indexBuf, gputypes.IndexFormatUint16, 0)
	}
	var current hal.RenderPipeline
	for i := range f.draws {
		dc := &f.draws[i]
		pipeline, err := d.pipelines.getOrCreate(dc.key)
		if err != nil {
			rp.End()
			encoder.DiscardEncoding()
			return stats, err
		}
		if pipeline != current {
			rp.SetPipeline(pipeline)
			current = pipeline
		}

		bk := bindKey{view: dc.view, sampler: dc.sampler, uniform: dc.uniform}
		group, ok := groups[bk]
		if !ok {
			group, err = d.createBindGroup(bk)
			if err != nil {
				rp.End()
				encoder.DiscardEncoding()
				return stats, err
			}
			groups[bk] = group
		}
		rp.SetBindGroup(0, group, nil)

		x, y, w, h := scissorRect(dc.scissor, f.target.Width, f.target.Height)
		rp.SetScissorRect(x, y, w, h)
		rp.DrawIndexed(dc.indexCount, 1, dc.firstIndex, dc.baseVertex, 0)
	}
	rp.End()
	stats.BindGroups = len(groups)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return stats, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWait(cmdBuf); err != nil {
		return stats, err
	}
	return stats, nil
}

// submitAndWait submits cmdBuf and blocks until the GPU finishes it.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, d.config.FenceTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !fenceOK {
		return ErrFenceTimeout
	}
	return nil
}

func (d *Device) createBindGroup(k bindKey) (hal.BindGroup, error) {
	g, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_bind_group",
		Layout: d.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: d.uniformBuf.NativeHandle(), Offset: k.uniform, Size: transformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: gputypes.TextureViewHandle(k.view.NativeHandle()),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: gputypes.SamplerHandle(d.samplers[k.sampler].NativeHandle()),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	return g, nil
}

// scissorRect clamps r to the target. An empty r covers the whole target.
func scissorRect(r image.Rectangle, width, height int) (x, y, w, h uint32) {
	full := image.Rect(0, 0, width, height)
	if r.Empty() {
		r = full
	} else {
		r = r.Intersect(full)
	}
	//nolint:gosec // clamped to the target
	return uint32(r.Min.X), uint32(r.Min.Y), uint32(r.Dx()), uint32(r.Dy())
}

// destroyDeferred destroys textures released while f was recording.
func (d *Device) destroyDeferred(f *frame) {
	for _, t := range f.deferred {
		d.device.DestroyTextureView(t.view)
		d.device.DestroyTexture(t.tex)
	}
	f.deferred = nil
}
