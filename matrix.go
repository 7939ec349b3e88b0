package sprite

import "github.com/go-gl/mathgl/mgl32"

// Projection returns the pixel-to-clip-space matrix for a viewport whose
// reciprocal extents are xRatio = 1/width and yRatio = -1/height.
//
// The matrix is column-major, as uploaded to the shader: x in [0, width]
// maps to [-1, 1] and y in [0, height] maps to [1, -1].
func Projection(xRatio, yRatio float32) mgl32.Mat4 {
	return mgl32.Mat4{
		2 * xRatio, 0, 0, 0,
		0, 2 * yRatio, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}

// Translate returns a 2D translation as a 4x4 world or view matrix.
func Translate(x, y float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, y, 0)
}

// Scale returns a 2D scale as a 4x4 world or view matrix.
func Scale(x, y float32) mgl32.Mat4 {
	return mgl32.Scale3D(x, y, 1)
}

// Rotate returns a rotation around the Z axis.
func Rotate(angle float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DZ(angle)
}

// worldViewProjection returns projection * view * world. Zero world or view
// matrices are treated as identity.
func worldViewProjection(world, view, projection mgl32.Mat4) mgl32.Mat4 {
	m := projection
	if view != (mgl32.Mat4{}) {
		m = m.Mul4(view)
	}
	if world != (mgl32.Mat4{}) {
		m = m.Mul4(world)
	}
	return m
}
