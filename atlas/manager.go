package atlas

import (
	"fmt"
	"image"
	"io"
	"slices"
	"strings"
	"sync"
)

// Handle locates a packed image.
type Handle struct {
	// PageIndex is the page, and the texture array slice, holding the image.
	PageIndex int

	// Name is the key the image was packed under.
	Name string

	// Source is the pixel rectangle inside the page.
	Source image.Rectangle
}

// UV returns the normalized texture coordinates of the handle on a page of
// the given size.
func (h Handle) UV(pageWidth, pageHeight int) (u0, v0, u1, v1 float32) {
	sx, sy := 1/float32(pageWidth), 1/float32(pageHeight)
	return float32(h.Source.Min.X) * sx, float32(h.Source.Min.Y) * sy,
		float32(h.Source.Max.X) * sx, float32(h.Source.Max.Y) * sy
}

// TextureArray is a device texture with one slice per page.
type TextureArray interface {
	// Binding returns the shader-visible view of the array.
	Binding() any

	// ID is the identity of the array.
	ID() uint64

	// Layers returns the number of slices.
	Layers() int

	// Release frees the device texture.
	Release() error
}

// ArrayCreator builds texture arrays from equally sized pages.
type ArrayCreator interface {
	NewTextureArray(pages []*image.RGBA, label string) (TextureArray, error)
}

// Manager packs named images into pages and turns the pages into one
// texture array.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	config Config
	pages  []*Atlas
	names  map[string]Handle

	array TextureArray
}

// NewManager creates an empty manager. Page dimensions are clamped.
func NewManager(config Config) (*Manager, error) {
	config = config.Clamped()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		config: config,
		names:  make(map[string]Handle),
	}, nil
}

// Config returns the effective (clamped) configuration.
func (m *Manager) Config() Config { return m.config }

// PageSize returns the dimensions shared by all pages.
func (m *Manager) PageSize() (width, height int) {
	return m.config.Width, m.config.Height
}

// AddTexture decodes an image from r and packs it under name, trying pages
// from startIndex upward and opening a new page when none has room.
func (m *Manager) AddTexture(r io.Reader, name string, startIndex int) (Handle, error) {
	img, _, err := Decode(r)
	if err != nil {
		return Handle{}, fmt.Errorf("add %q: %w", name, err)
	}
	return m.AddImage(img, name, startIndex)
}

// AddImage packs an already decoded image. See AddTexture.
func (m *Manager) AddImage(img image.Image, name string, startIndex int) (Handle, error) {
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return Handle{}, fmt.Errorf("add %q: %w", name, ErrEmptyImage)
	}
	if size.X > m.config.Width-2*Border || size.Y > m.config.Height-2*Border {
		return Handle{}, fmt.Errorf("add %q (%dx%d): %w", name, size.X, size.Y, ErrImageTooLarge)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.names[name]; exists {
		return Handle{}, fmt.Errorf("add %q: %w", name, ErrDuplicateName)
	}

	start := min(max(startIndex, 0), len(m.pages))
	for i := start; i < len(m.pages); i++ {
		if r, ok := m.pages[i].AddTexture(img, name); ok {
			return m.record(i, name, r), nil
		}
	}

	if len(m.pages) >= m.config.MaxPages {
		return Handle{}, &FullError{Name: name, Pages: len(m.pages), MaxPages: m.config.MaxPages}
	}

	page := newAtlas(len(m.pages), m.config.Width, m.config.Height)
	m.pages = append(m.pages, page)
	slogger().Debug("atlas: page created",
		"index", page.index, "width", m.config.Width, "height", m.config.Height)

	r, ok := page.AddTexture(img, name)
	if !ok {
		// Unreachable for images that passed the size check.
		return Handle{}, fmt.Errorf("add %q: %w", name, ErrImageTooLarge)
	}
	return m.record(page.index, name, r), nil
}

func (m *Manager) record(page int, name string, r image.Rectangle) Handle {
	h := Handle{PageIndex: page, Name: name, Source: r}
	m.names[name] = h
	return h
}

// Lookup returns the handle of a packed image.
func (m *Manager) Lookup(name string) (Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.names[name]
	return h, ok
}

// TryGetSourceRectangle returns the rectangle of name on the given page.
func (m *Manager) TryGetSourceRectangle(page int, name string) (image.Rectangle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if page < 0 || page >= len(m.pages) {
		return image.Rectangle{}, false
	}
	return m.pages[page].TryGetSourceRectangle(name)
}

// RemoveTexture erases a packed image. Its space is not reclaimed.
func (m *Manager) RemoveTexture(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.names[name]
	if !ok {
		return false
	}
	delete(m.names, name)
	return m.pages[h.PageIndex].RemoveTexture(name)
}

// Handles returns every packed image ordered by name.
func (m *Manager) Handles() []Handle {
	m.mu.RLock()
	handles := make([]Handle, 0, len(m.names))
	for _, h := range m.names {
		handles = append(handles, h)
	}
	m.mu.RUnlock()
	slices.SortFunc(handles, func(a, b Handle) int { return strings.Compare(a.Name, b.Name) })
	return handles
}

// Pages returns the number of pages.
func (m *Manager) Pages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// Page returns page i, or nil when out of range.
func (m *Manager) Page(i int) *Atlas {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.pages) {
		return nil
	}
	return m.pages[i]
}

// Len returns the number of packed images.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

// Utilization returns the average page utilization.
func (m *Manager) Utilization() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.pages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range m.pages {
		sum += p.Utilization()
	}
	return sum / float64(len(m.pages))
}

// DirtyPages returns the indices of pages changed since MarkClean.
func (m *Manager) DirtyPages() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var dirty []int
	for i, p := range m.pages {
		if p.dirty {
			dirty = append(dirty, i)
		}
	}
	return dirty
}

// MarkClean clears the dirty flag of page i.
func (m *Manager) MarkClean(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.pages) {
		m.pages[i].dirty = false
	}
}

// GenerateTextureArray uploads every page as one slice of a new texture
// array. On failure the previous array stays current and the error is
// returned. On success the previous array is released.
func (m *Manager) GenerateTextureArray(creator ArrayCreator) error {
	if creator == nil {
		return ErrNilCreator
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pages) == 0 {
		return ErrNoPages
	}
	images := make([]*image.RGBA, len(m.pages))
	for i, p := range m.pages {
		images[i] = p.Image()
	}

	arr, err := creator.NewTextureArray(images, "sprite_atlas_array")
	if err != nil {
		slogger().Warn("atlas: texture array generation failed, keeping previous array",
			"pages", len(images), "err", err)
		return fmt.Errorf("generate texture array: %w", err)
	}

	m.releaseArray()
	m.array = arr
	for _, p := range m.pages {
		p.dirty = false
	}
	slogger().Debug("atlas: texture array generated", "layers", arr.Layers(), "id", arr.ID())
	return nil
}

// TextureArray returns the current texture array, or nil before the first
// successful GenerateTextureArray.
func (m *Manager) TextureArray() TextureArray {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.array
}

// Reset drops every page and name and releases the texture array.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = nil
	m.names = make(map[string]Handle)
	m.releaseArray()
}

func (m *Manager) releaseArray() {
	if m.array == nil {
		return
	}
	if err := m.array.Release(); err != nil {
		slogger().Warn("atlas: texture array release failed", "err", err)
	}
	m.array = nil
}
