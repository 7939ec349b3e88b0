package sprite

import (
	"fmt"
	"hash/fnv"

	"github.com/gogpu/sprite/atlas"
	"github.com/gogpu/sprite/internal/spin"
)

// TextureResolver turns a Texture into the binding and metadata used for
// drawing. Resolve is called once per draw call and must be safe for
// concurrent use.
type TextureResolver interface {
	Resolve(tex Texture) (TextureInfo, error)
}

// DirectResolver binds every texture on its own. Resolved metadata is cached
// by texture ID and outlives sessions; call Forget before a released
// texture's ID can be reused.
type DirectResolver struct {
	lock  spin.Lock
	cache map[uint64]TextureInfo
}

// NewDirectResolver creates an empty resolver.
func NewDirectResolver() *DirectResolver {
	return &DirectResolver{cache: make(map[uint64]TextureInfo)}
}

// Resolve returns cached metadata for tex, registering it on first use.
// tex must implement BoundTexture.
func (r *DirectResolver) Resolve(tex Texture) (TextureInfo, error) {
	id := tex.ID()

	r.lock.Lock()
	info, ok := r.cache[id]
	r.lock.Unlock()
	if ok {
		return info, nil
	}

	bt, ok := tex.(BoundTexture)
	if !ok {
		return TextureInfo{}, fmt.Errorf("%w: %T", ErrUnboundTexture, tex)
	}
	w, h := bt.Size()
	info = newTextureInfo(bt.Binding(), id, w, h)

	r.lock.Lock()
	r.cache[id] = info
	r.lock.Unlock()
	return info, nil
}

// Forget drops cached metadata of tex.
func (r *DirectResolver) Forget(tex Texture) {
	r.lock.Lock()
	delete(r.cache, tex.ID())
	r.lock.Unlock()
}

// Len returns the number of cached textures.
func (r *DirectResolver) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.cache)
}

// AtlasTexture is an image packed into an atlas page. It is drawn through
// an [ArrayResolver].
type AtlasTexture struct {
	atlas.Handle
}

// ID hashes the packed name.
func (t AtlasTexture) ID() uint64 {
	h := fnv.New64a()
	h.Write([]byte(t.Name))
	return h.Sum64()
}

// Size returns the packed image size.
func (t AtlasTexture) Size() (width, height int) {
	return t.Source.Dx(), t.Source.Dy()
}

// ArrayResolver draws atlas textures from the manager's texture array, so
// all of them share one binding and one run. Other textures fall back to a
// DirectResolver.
type ArrayResolver struct {
	manager  *atlas.Manager
	fallback *DirectResolver
}

// NewArrayResolver creates a resolver over m.
func NewArrayResolver(m *atlas.Manager) *ArrayResolver {
	return &ArrayResolver{manager: m, fallback: NewDirectResolver()}
}

// Texture looks up a packed image by name.
func (r *ArrayResolver) Texture(name string) (AtlasTexture, bool) {
	h, ok := r.manager.Lookup(name)
	return AtlasTexture{Handle: h}, ok
}

// Resolve implements TextureResolver.
func (r *ArrayResolver) Resolve(tex Texture) (TextureInfo, error) {
	at, ok := tex.(AtlasTexture)
	if !ok {
		return r.fallback.Resolve(tex)
	}
	arr := r.manager.TextureArray()
	if arr == nil {
		return TextureInfo{}, ErrNoTextureArray
	}
	w, h := r.manager.PageSize()
	info := newTextureInfo(arr.Binding(), arr.ID(), w, h)
	info.Bounds = RectFromImage(at.Source)
	info.Index = at.PageIndex
	return info, nil
}
