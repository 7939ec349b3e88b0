package sprite

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/sprite/internal/parallel"
)

// Batch accumulates draws between Begin and End and submits them to a
// Device in as few draw calls as texture changes allow.
//
// Draw methods are safe for concurrent use inside a session. Begin, End,
// Resize and Close must be called from one goroutine.
type Batch struct {
	device    Device
	resources *DeviceResources
	ownsRes   bool
	resolver  TextureResolver
	config    Config
	pool      *parallel.WorkerPool
	queue     *spriteQueue

	begun   atomic.Bool
	session BeginOptions

	// viewport
	width, height  int
	xRatio, yRatio float32

	stats     FlushStats
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewBatch creates a batch drawing to dev.
//
// Unless WithDeviceResources is given, the batch creates its own white
// texture when dev implements TextureCreator.
func NewBatch(dev Device, opts ...Option) (*Batch, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	b := &Batch{
		device:    dev,
		resources: o.resources,
		resolver:  o.resolver,
		config:    o.config,
		queue:     newSpriteQueue(o.config.InitialQueueCapacity),
	}
	if b.resolver == nil {
		b.resolver = NewDirectResolver()
	}
	if b.resources == nil {
		creator, _ := dev.(TextureCreator)
		res, err := NewDeviceResources(creator)
		if err != nil {
			return nil, err
		}
		b.resources = res
		b.ownsRes = true
	}
	b.pool = parallel.NewWorkerPool(o.config.Workers)

	registerDevice(dev)
	Logger().Info("sprite: batch created",
		"maxBatchSize", o.config.MaxBatchSize, "resolver", fmt.Sprintf("%T", b.resolver))
	return b, nil
}

// Begin opens a session.
func (b *Batch) Begin(opts BeginOptions) error {
	if b.closed.Load() {
		return ErrBatchClosed
	}
	if !opts.SortMode.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownSortMode, opts.SortMode)
	}
	if !b.begun.CompareAndSwap(false, true) {
		return ErrAlreadyBegun
	}
	b.session = opts
	return nil
}

// End sorts and draws everything queued since Begin and closes the session.
// The queue is emptied even when drawing fails.
func (b *Batch) End() error {
	if !b.begun.Load() {
		return ErrNotBegun
	}
	defer func() {
		b.queue.reset()
		b.begun.Store(false)
	}()

	if b.queue.len() == 0 {
		b.stats = FlushStats{}
		return nil
	}

	if err := b.device.SetState(b.session.State); err != nil {
		return fmt.Errorf("sprite: set state: %w", err)
	}
	b.device.SetTransform(worldViewProjection(b.session.Transform, b.session.View, b.Projection()))

	stats, err := b.flush()
	b.stats = stats
	if err != nil {
		return err
	}
	Logger().Debug("sprite: flushed",
		"sprites", stats.Sprites, "runs", stats.Runs, "draws", stats.DrawCalls,
		"sort", b.session.SortMode.String())
	return nil
}

// Resize updates the viewport projection: xRatio = 1/width and
// yRatio = -1/height. Calling it again with the same size is a no-op.
// Buffers are not reallocated.
func (b *Batch) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	if width == b.width && height == b.height {
		return nil
	}
	b.width, b.height = width, height
	b.xRatio = 1 / float32(width)
	b.yRatio = -1 / float32(height)
	return nil
}

// Viewport returns the size set by Resize.
func (b *Batch) Viewport() (width, height int) {
	return b.width, b.height
}

// Projection returns the current viewport projection. Before the first
// Resize it is the identity.
func (b *Batch) Projection() mgl32.Mat4 {
	if b.width == 0 {
		return mgl32.Ident4()
	}
	return Projection(b.xRatio, b.yRatio)
}

// Stats returns statistics of the last End.
func (b *Batch) Stats() FlushStats {
	return b.stats
}

// Len returns the number of queued entries in the open session.
func (b *Batch) Len() int {
	return b.queue.len()
}

// Resources returns the device resources used by the batch.
func (b *Batch) Resources() *DeviceResources {
	return b.resources
}

// Close stops the fill workers and releases resources owned by the batch.
func (b *Batch) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		b.pool.Close()
		unregisterDevice(b.device)
		if b.ownsRes {
			err = b.resources.Close()
		}
	})
	return err
}
