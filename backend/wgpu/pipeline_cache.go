// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/wgpu/hal"
)

// pipelineKey identifies one render pipeline variant. Sampler and scissor
// are bound per draw and are not part of the key.
type pipelineKey struct {
	blend       sprite.BlendMode
	depth       sprite.DepthMode
	cull        sprite.CullMode
	colorFormat gputypes.TextureFormat
	depthFormat gputypes.TextureFormat
}

func keyFor(s sprite.State, colorFormat, depthFormat gputypes.TextureFormat) pipelineKey {
	k := pipelineKey{
		blend:       s.Blend,
		depth:       s.Depth,
		cull:        s.Cull,
		colorFormat: colorFormat,
	}
	// Pipelines must match the pass attachments. A pass with a depth
	// attachment needs a depth-aware pipeline even for DepthNone.
	if depthFormat != gputypes.TextureFormatUndefined {
		k.depthFormat = depthFormat
	}
	return k
}

// pipelineCache caches render pipelines by state.
//
// It uses RWMutex with double-check locking: lookups take the read lock,
// creation re-checks under the write lock.
type pipelineCache struct {
	mu        sync.RWMutex
	device    hal.Device
	layout    hal.PipelineLayout
	shader    hal.ShaderModule
	pipelines map[pipelineKey]hal.RenderPipeline

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newPipelineCache(device hal.Device, layout hal.PipelineLayout, shader hal.ShaderModule) *pipelineCache {
	return &pipelineCache{
		device:    device,
		layout:    layout,
		shader:    shader,
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
}

// getOrCreate returns the pipeline for k, creating it on first use.
func (c *pipelineCache) getOrCreate(k pipelineKey) (hal.RenderPipeline, error) {
	c.mu.RLock()
	if p, ok := c.pipelines[k]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[k]; ok {
		c.hits.Add(1)
		return p, nil
	}
	p, err := c.device.CreateRenderPipeline(c.descriptor(k))
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline %s/%s/%s: %w",
			k.blend, k.depth, k.cull, err)
	}
	c.pipelines[k] = p
	c.misses.Add(1)
	slogger().Info("wgpu: pipeline created",
		"blend", k.blend.String(), "depth", k.depth.String(), "cull", k.cull.String())
	return p, nil
}

func (c *pipelineCache) descriptor(k pipelineKey) *hal.RenderPipelineDescriptor {
	desc := &hal.RenderPipelineDescriptor{
		Label:  "sprite_pipeline",
		Layout: c.layout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{sprite.VertexBufferLayout()},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  cullMode(k.cull),
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    k.colorFormat,
					Blend:     blendState(k.blend),
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
	}
	if k.depthFormat != gputypes.TextureFormatUndefined {
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		compare := gputypes.CompareFunctionLessEqual
		if k.depth == sprite.DepthNone {
			compare = gputypes.CompareFunctionAlways
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            k.depthFormat,
			DepthWriteEnabled: k.depth == sprite.DepthReadWrite,
			DepthCompare:      compare,
			StencilFront:      keep,
			StencilBack:       keep,
		}
	}
	return desc
}

// blendState maps a blend mode to a color target blend. Opaque returns nil,
// which replaces the target.
func blendState(m sprite.BlendMode) *gputypes.BlendState {
	var b gputypes.BlendState
	switch m {
	case sprite.BlendOpaque:
		return nil
	case sprite.BlendAdditive:
		b = gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOne,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	case sprite.BlendNonPremultiplied:
		b = gputypes.BlendState{
			Color: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorSrcAlpha,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
			Alpha: gputypes.BlendComponent{
				SrcFactor: gputypes.BlendFactorOne,
				DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
				Operation: gputypes.BlendOperationAdd,
			},
		}
	default:
		b = gputypes.BlendStatePremultiplied()
	}
	return &b
}

// cullMode maps winding-based culling to HAL face culling with
// counter-clockwise front faces. Unflipped sprite quads wind clockwise.
func cullMode(m sprite.CullMode) gputypes.CullMode {
	switch m {
	case sprite.CullClockwise:
		return gputypes.CullModeBack
	case sprite.CullCounterClockwise:
		return gputypes.CullModeFront
	default:
		return gputypes.CullModeNone
	}
}

// stats returns cache hits and misses.
func (c *pipelineCache) stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *pipelineCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// destroyAll destroys every cached pipeline and empties the cache.
func (c *pipelineCache) destroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
}
