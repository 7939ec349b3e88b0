package sprite

import (
	"errors"
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeTexture struct {
	id       uint64
	w, h     int
	released bool
}

func (t *fakeTexture) ID() uint64       { return t.id }
func (t *fakeTexture) Size() (int, int) { return t.w, t.h }
func (t *fakeTexture) Binding() any     { return t }
func (t *fakeTexture) Release() error   { t.released = true; return nil }

func newFakeTexture(id uint64, w, h int) *fakeTexture {
	return &fakeTexture{id: id, w: w, h: h}
}

type drawCall struct {
	binding    any
	indexCount int
	vertices   []Vertex
}

// fakeDevice records the calls a Batch makes.
type fakeDevice struct {
	mu        sync.Mutex
	mapped    []Vertex
	isMapped  bool
	bound     any
	draws     []drawCall
	states    []State
	transform mgl32.Mat4
	nextID    uint64
	mapErr    error
}

func (d *fakeDevice) MapVertices(n int) ([]Vertex, error) {
	if d.mapErr != nil {
		return nil, d.mapErr
	}
	if d.isMapped {
		return nil, errors.New("vertex buffer already mapped")
	}
	d.isMapped = true
	d.mapped = make([]Vertex, n)
	return d.mapped, nil
}

func (d *fakeDevice) UnmapVertices() error {
	if !d.isMapped {
		return errors.New("vertex buffer not mapped")
	}
	d.isMapped = false
	return nil
}

func (d *fakeDevice) SetState(s State) error {
	d.states = append(d.states, s)
	return nil
}

func (d *fakeDevice) SetTransform(m mgl32.Mat4) { d.transform = m }

func (d *fakeDevice) BindTexture(binding any) error {
	d.bound = binding
	return nil
}

func (d *fakeDevice) DrawIndexed(indexCount, _, _ int) error {
	if d.isMapped {
		return errors.New("draw while mapped")
	}
	d.draws = append(d.draws, drawCall{
		binding:    d.bound,
		indexCount: indexCount,
		vertices:   d.mapped[:indexCount/IndicesPerSprite*VerticesPerSprite],
	})
	return nil
}

func (d *fakeDevice) NewTexture(img *image.RGBA, _ string) (BoundTexture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return newFakeTexture(1000+d.nextID, img.Rect.Dx(), img.Rect.Dy()), nil
}

func (d *fakeDevice) UpdateTexture(BoundTexture, *image.RGBA) error { return nil }

// totals sums indices and vertices over all recorded draws.
func (d *fakeDevice) totals() (indices, vertices int) {
	for _, dc := range d.draws {
		indices += dc.indexCount
		vertices += len(dc.vertices)
	}
	return indices, vertices
}

// bareDevice forwards to fakeDevice but cannot create textures.
type bareDevice struct{ d *fakeDevice }

func (b bareDevice) MapVertices(n int) ([]Vertex, error) { return b.d.MapVertices(n) }
func (b bareDevice) UnmapVertices() error                { return b.d.UnmapVertices() }
func (b bareDevice) SetState(s State) error              { return b.d.SetState(s) }
func (b bareDevice) SetTransform(m mgl32.Mat4)           { b.d.SetTransform(m) }
func (b bareDevice) BindTexture(binding any) error       { return b.d.BindTexture(binding) }
func (b bareDevice) DrawIndexed(n, s, v int) error       { return b.d.DrawIndexed(n, s, v) }
