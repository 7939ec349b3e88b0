package sprite

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexLayoutVersion identifies the Vertex field order and offsets.
// Shaders consuming Vertex declare the same version.
const VertexLayoutVersion = 1

// Per-sprite geometry constants.
const (
	VerticesPerSprite = 4
	IndicesPerSprite  = 6

	// VertexStride is the byte size of one Vertex:
	// pos(8) + color(16) + uv(8) + depth(4) + layer(4) = 40 bytes.
	VertexStride = 40
)

// Vertex is one corner of a sprite quad as seen by the vertex shader.
//
//	location 0: position  float32x2  offset 0
//	location 1: color     float32x4  offset 8  (premultiplied)
//	location 2: tex_coord float32x2  offset 24
//	location 3: depth     float32    offset 32
//	location 4: layer     float32    offset 36 (texture array slice)
type Vertex struct {
	X, Y       float32
	R, G, B, A float32
	U, V       float32
	Depth      float32
	Layer      float32
}

// VertexBufferLayout returns the GPU vertex buffer layout of Vertex.
func VertexBufferLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},  // color
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // tex_coord
			{Format: gputypes.VertexFormatFloat32, Offset: 32, ShaderLocation: 3},   // depth
			{Format: gputypes.VertexFormatFloat32, Offset: 36, ShaderLocation: 4},   // layer
		},
	}
}

// AppendVertexBytes appends the little-endian encoding of vs to dst.
func AppendVertexBytes(dst []byte, vs []Vertex) []byte {
	for i := range vs {
		v := &vs[i]
		for _, f := range [...]float32{v.X, v.Y, v.R, v.G, v.B, v.A, v.U, v.V, v.Depth, v.Layer} {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	}
	return dst
}

// QuadIndices returns the static index pattern for n quads:
// 0,1,2, 0,2,3 offset by 4 per quad.
func QuadIndices(n int) []uint16 {
	indices := make([]uint16, 0, n*IndicesPerSprite)
	for i := range n {
		base := uint16(i * VerticesPerSprite)
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	return indices
}
