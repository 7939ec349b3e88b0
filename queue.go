package sprite

import (
	"sync"
	"sync/atomic"
)

// spriteQueue stores the draws of one session in parallel arrays.
//
// Slots are reserved with an atomic counter so producers never block each
// other. Writers hold the read side of mu while storing into their slot;
// growth takes the write side, so a slot is never written into a backing
// array that is being replaced.
type spriteQueue struct {
	count atomic.Int64

	mu       sync.RWMutex
	sprites  []SpriteInfo
	textures []TextureInfo

	// order is the sort permutation, rebuilt every flush.
	order []int32

	grows int
}

func newSpriteQueue(capacity int) *spriteQueue {
	return &spriteQueue{
		sprites:  make([]SpriteInfo, capacity),
		textures: make([]TextureInfo, capacity),
		order:    make([]int32, 0, capacity),
	}
}

// append stores one entry and returns its index.
func (q *spriteQueue) append(s *SpriteInfo, t *TextureInfo) int {
	idx := int(q.count.Add(1) - 1)

	q.mu.RLock()
	if idx >= len(q.sprites) {
		q.mu.RUnlock()
		q.grow(idx + 1)
		q.mu.RLock()
	}
	q.sprites[idx] = *s
	q.textures[idx] = *t
	q.mu.RUnlock()
	return idx
}

// grow doubles the arrays until they hold need entries.
func (q *spriteQueue) grow(need int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Another producer may have grown the queue already.
	if need <= len(q.sprites) {
		return
	}
	n := max(len(q.sprites), 1)
	for n < need {
		n *= 2
	}

	sprites := make([]SpriteInfo, n)
	copy(sprites, q.sprites)
	textures := make([]TextureInfo, n)
	copy(textures, q.textures)
	q.sprites, q.textures = sprites, textures
	q.order = make([]int32, 0, n)
	q.grows++

	Logger().Debug("sprite: queue grown", "capacity", n)
}

// len returns the number of queued entries.
func (q *spriteQueue) len() int {
	return int(q.count.Load())
}

// capacity returns the allocated slot count.
func (q *spriteQueue) capacity() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.sprites)
}

// reset empties the queue, keeping its storage.
func (q *spriteQueue) reset() {
	n := q.len()
	clear(q.textures[:n])
	q.count.Store(0)
}
