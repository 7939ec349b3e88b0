package sprite

import (
	"cmp"
	"slices"
)

// SortMode controls the order in which queued sprites are drawn.
type SortMode uint8

const (
	// SortDeferred draws in submission order.
	SortDeferred SortMode = iota

	// SortTexture groups sprites by texture identity. Stable.
	SortTexture

	// SortBackToFront draws larger depths first. Stable.
	SortBackToFront

	// SortFrontToBack draws smaller depths first. Stable.
	SortFrontToBack
)

func (m SortMode) String() string {
	switch m {
	case SortDeferred:
		return "Deferred"
	case SortTexture:
		return "Texture"
	case SortBackToFront:
		return "BackToFront"
	case SortFrontToBack:
		return "FrontToBack"
	default:
		return "Unknown"
	}
}

func (m SortMode) valid() bool {
	return m <= SortFrontToBack
}

// sort builds the draw permutation for the first n entries. It returns nil
// for SortDeferred, meaning identity order.
func (q *spriteQueue) sort(mode SortMode) []int32 {
	if mode == SortDeferred {
		return nil
	}
	n := q.len()
	order := q.order[:0]
	for i := range n {
		order = append(order, int32(i))
	}
	q.order = order

	switch mode {
	case SortTexture:
		tex := q.textures
		slices.SortStableFunc(order, func(a, b int32) int {
			return cmp.Compare(tex[a].ID, tex[b].ID)
		})
	case SortBackToFront:
		spr := q.sprites
		slices.SortStableFunc(order, func(a, b int32) int {
			return cmp.Compare(spr[b].Depth, spr[a].Depth)
		})
	case SortFrontToBack:
		spr := q.sprites
		slices.SortStableFunc(order, func(a, b int32) int {
			return cmp.Compare(spr[a].Depth, spr[b].Depth)
		})
	}
	return order
}
