// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/wgpu/hal"
)

// Config configures a Device. Zero fields take defaults.
type Config struct {
	// ColorFormat is the default color target format.
	// Default: gputypes.TextureFormatBGRA8Unorm.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the format of depth views passed in FrameTarget.
	// Default: gputypes.TextureFormatDepth24PlusStencil8.
	DepthFormat gputypes.TextureFormat

	// MaxQuads is the number of quads the static index buffer covers.
	// Default and maximum: sprite.MaxQuadsPerDraw.
	MaxQuads int

	// FenceTimeout bounds the wait for a submitted frame. Default: 5s.
	FenceTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.ColorFormat == gputypes.TextureFormatUndefined {
		c.ColorFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if c.DepthFormat == gputypes.TextureFormatUndefined {
		c.DepthFormat = gputypes.TextureFormatDepth24PlusStencil8
	}
	if c.MaxQuads <= 0 || c.MaxQuads > sprite.MaxQuadsPerDraw {
		c.MaxQuads = sprite.MaxQuadsPerDraw
	}
	if c.FenceTimeout <= 0 {
		c.FenceTimeout = 5 * time.Second
	}
	return c
}

// uniformSlot is the byte stride between transforms in the uniform buffer.
// It matches the minimum uniform buffer offset alignment of WebGPU.
const uniformSlot = 256

// transformSize is the byte size of one column-major mat4x4<f32>.
const transformSize = 64

// Device draws sprite batches on a HAL device.
//
// Device is safe for concurrent use. Draw recording follows the frame
// protocol: BeginFrame, any number of batch sessions, EndFrame.
type Device struct {
	device hal.Device
	queue  hal.Queue
	config Config

	mu     sync.Mutex
	closed bool

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  *pipelineCache
	samplers   [4]hal.Sampler
	indexBuf   hal.Buffer

	vertexBuf  hal.Buffer
	vertexCap  uint64
	uniformBuf hal.Buffer
	uniformCap uint64

	// Recording state, valid across frames.
	state        sprite.State
	transform    mgl32.Mat4
	transformSet bool
	bound        *binding

	staging []sprite.Vertex
	mapped  int
	frame   *frame
	last    FrameStats

	live   map[*gpuTexture]struct{}
	nextID uint64
}

var (
	_ sprite.Device         = (*Device)(nil)
	_ sprite.TextureCreator = (*Device)(nil)
	_ atlas.ArrayCreator    = (*Device)(nil)
)

// New creates a Device on an open HAL device and queue. The caller keeps
// ownership of both; Close releases only what Device created.
func New(device hal.Device, queue hal.Queue, config Config) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	d := &Device{
		device:    device,
		queue:     queue,
		config:    config.withDefaults(),
		transform: mgl32.Ident4(),
		mapped:    -1,
		live:      make(map[*gpuTexture]struct{}),
	}
	if err := d.init(); err != nil {
		d.destroyResources()
		return nil, err
	}
	slogger().Info("wgpu: sprite device created",
		"color_format", d.config.ColorFormat, "max_quads", d.config.MaxQuads)
	return d, nil
}

// halProvider is implemented by device providers that expose HAL handles.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewFromProvider creates a Device sharing the HAL device of a host
// application. The provider's surface format becomes the default color
// format unless config sets one.
func NewFromProvider(provider gpucontext.DeviceProvider, config Config) (*Device, error) {
	if provider == nil {
		return nil, ErrNoHALProvider
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHALProvider, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHALProvider, hp.HalQueue())
	}
	if config.ColorFormat == gputypes.TextureFormatUndefined {
		config.ColorFormat = provider.SurfaceFormat()
	}
	return New(device, queue, config)
}

func (d *Device) init() error {
	shader, err := createSpriteShader(d.device)
	if err != nil {
		return err
	}
	d.shader = shader

	d.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}

	d.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	d.pipelines = newPipelineCache(d.device, d.pipeLayout, d.shader)

	for _, mode := range []sprite.SamplerMode{
		sprite.SamplerLinearClamp, sprite.SamplerPointClamp,
		sprite.SamplerLinearWrap, sprite.SamplerPointWrap,
	} {
		s, err := d.device.CreateSampler(samplerDescriptor(mode))
		if err != nil {
			return fmt.Errorf("wgpu: create sampler %s: %w", mode, err)
		}
		d.samplers[mode] = s
	}

	indices := sprite.QuadIndices(d.config.MaxQuads)
	data := make([]byte, 0, len(indices)*2)
	for _, i := range indices {
		data = append(data, byte(i), byte(i>>8))
	}
	d.indexBuf, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_indices",
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create index buffer: %w", err)
	}
	d.queue.WriteBuffer(d.indexBuf, 0, data)
	return nil
}

func samplerDescriptor(mode sprite.SamplerMode) *hal.SamplerDescriptor {
	address := gputypes.AddressModeClampToEdge
	if mode.Wrap() {
		address = gputypes.AddressModeRepeat
	}
	filter := gputypes.FilterModeNearest
	if mode.Linear() {
		filter = gputypes.FilterModeLinear
	}
	return &hal.SamplerDescriptor{
		Label:        "sprite_sampler_" + mode.String(),
		AddressModeU: address,
		AddressModeV: address,
		AddressModeW: address,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	}
}

// Config returns the effective configuration.
func (d *Device) Config() Config { return d.config }

// SetLogger sets the package logger. sprite.SetLogger calls it for every
// batch device.
func (d *Device) SetLogger(l *slog.Logger) { setLogger(l) }

// PipelineStats returns pipeline cache hits and misses.
func (d *Device) PipelineStats() (hits, misses uint64) {
	return d.pipelines.stats()
}

// LiveTextures returns the number of textures created and not released.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

func (d *Device) nextTextureID() uint64 {
	d.nextID++
	return d.nextID
}

// ensureBuffer returns a buffer of at least size bytes, replacing buf
// when it is too small. Capacity doubles to amortize growth.
func (d *Device) ensureBuffer(buf hal.Buffer, capacity *uint64, size uint64, label string, usage gputypes.BufferUsage) (hal.Buffer, error) {
	if buf != nil && *capacity >= size {
		return buf, nil
	}
	newCap := max(*capacity*2, size, 4096)
	nb, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  newCap,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s (%d bytes): %w", label, newCap, err)
	}
	if buf != nil {
		d.device.DestroyBuffer(buf)
	}
	slogger().Debug("wgpu: buffer grown", "label", label, "bytes", newCap)
	*capacity = newCap
	return nb, nil
}

// Close destroys every resource the device created, including textures
// that were not released. An open frame is discarded. Close is idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	var errs []error
	if d.frame != nil {
		errs = append(errs, errors.New("wgpu: frame discarded on close"))
		d.destroyDeferred(d.frame)
		d.frame = nil
	}
	for t := range d.live {
		d.device.DestroyTextureView(t.binding.view)
		d.device.DestroyTexture(t.tex)
		t.tex = nil
		t.binding.live = false
	}
	clear(d.live)
	d.destroyResources()
	d.closed = true
	slogger().Info("wgpu: sprite device closed")
	return errors.Join(errs...)
}

// destroyResources releases device-level objects in reverse creation order.
func (d *Device) destroyResources() {
	if d.pipelines != nil {
		d.pipelines.destroyAll()
	}
	if d.uniformBuf != nil {
		d.device.DestroyBuffer(d.uniformBuf)
		d.uniformBuf = nil
	}
	if d.vertexBuf != nil {
		d.device.DestroyBuffer(d.vertexBuf)
		d.vertexBuf = nil
	}
	if d.indexBuf != nil {
		d.device.DestroyBuffer(d.indexBuf)
		d.indexBuf = nil
	}
	for i, s := range d.samplers {
		if s != nil {
			d.device.DestroySampler(s)
			d.samplers[i] = nil
		}
	}
	if d.pipeLayout != nil {
		d.device.DestroyPipelineLayout(d.pipeLayout)
		d.pipeLayout = nil
	}
	if d.bindLayout != nil {
		d.device.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
	if d.shader != nil {
		d.device.DestroyShaderModule(d.shader)
		d.shader = nil
	}
}
