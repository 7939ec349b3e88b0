package sprite

import "github.com/go-gl/mathgl/mgl32"

// Device is the graphics API a Batch draws through.
//
// The device owns a static index buffer holding the quad pattern
// 0,1,2, 0,2,3 (offset by 4 per quad) for at least MaxBatchSize quads, and
// a dynamic vertex buffer that is mapped with write-discard semantics.
//
// A Batch issues, per sub-batch and under one lock:
//
//	MapVertices -> fill -> UnmapVertices -> BindTexture -> DrawIndexed
type Device interface {
	// MapVertices returns a writable view of n vertices. Previous contents
	// are discarded.
	MapVertices(n int) ([]Vertex, error)

	// UnmapVertices ends the write started by MapVertices.
	UnmapVertices() error

	// SetState applies blend, sampler, depth, cull and scissor state.
	SetState(s State) error

	// SetTransform sets the column-major world-view-projection matrix.
	SetTransform(m mgl32.Mat4)

	// BindTexture binds a shader-visible texture view from TextureInfo.Binding.
	BindTexture(binding any) error

	// DrawIndexed draws indexCount indices of the static quad index buffer
	// starting at startIndex, with baseVertex added to every index.
	DrawIndexed(indexCount, startIndex, baseVertex int) error
}
