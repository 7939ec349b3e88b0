package sprite

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// BlendMode selects how sprite colors combine with the target.
type BlendMode uint8

const (
	// BlendPremultiplied is source-over for premultiplied colors (default).
	BlendPremultiplied BlendMode = iota

	// BlendAdditive adds the source to the target.
	BlendAdditive

	// BlendOpaque replaces the target.
	BlendOpaque

	// BlendNonPremultiplied is source-over for straight-alpha textures.
	BlendNonPremultiplied
)

func (m BlendMode) String() string {
	switch m {
	case BlendPremultiplied:
		return "Premultiplied"
	case BlendAdditive:
		return "Additive"
	case BlendOpaque:
		return "Opaque"
	case BlendNonPremultiplied:
		return "NonPremultiplied"
	default:
		return "Unknown"
	}
}

// SamplerMode selects texture filtering and addressing.
type SamplerMode uint8

const (
	SamplerLinearClamp SamplerMode = iota // default
	SamplerPointClamp
	SamplerLinearWrap
	SamplerPointWrap
)

func (m SamplerMode) String() string {
	switch m {
	case SamplerLinearClamp:
		return "LinearClamp"
	case SamplerPointClamp:
		return "PointClamp"
	case SamplerLinearWrap:
		return "LinearWrap"
	case SamplerPointWrap:
		return "PointWrap"
	default:
		return "Unknown"
	}
}

// Linear reports whether the mode filters linearly.
func (m SamplerMode) Linear() bool {
	return m == SamplerLinearClamp || m == SamplerLinearWrap
}

// Wrap reports whether the mode repeats texture coordinates.
func (m SamplerMode) Wrap() bool {
	return m == SamplerLinearWrap || m == SamplerPointWrap
}

// DepthMode selects depth testing and writing.
type DepthMode uint8

const (
	DepthNone      DepthMode = iota // no depth test (default)
	DepthRead                       // test, no write
	DepthReadWrite                  // test and write
)

func (m DepthMode) String() string {
	switch m {
	case DepthNone:
		return "None"
	case DepthRead:
		return "Read"
	case DepthReadWrite:
		return "ReadWrite"
	default:
		return "Unknown"
	}
}

// CullMode selects face culling.
type CullMode uint8

const (
	CullNone CullMode = iota // default
	CullClockwise
	CullCounterClockwise
)

func (m CullMode) String() string {
	switch m {
	case CullNone:
		return "None"
	case CullClockwise:
		return "Clockwise"
	case CullCounterClockwise:
		return "CounterClockwise"
	default:
		return "Unknown"
	}
}

// State is the fixed-function state of a session. It is comparable and
// used as a pipeline cache key by devices.
type State struct {
	Blend   BlendMode
	Sampler SamplerMode
	Depth   DepthMode
	Cull    CullMode

	// Scissor limits drawing to a rectangle in pixels. Empty disables it.
	Scissor image.Rectangle
}

// BeginOptions configures a session.
type BeginOptions struct {
	SortMode SortMode
	State

	// Transform is the world matrix applied to every sprite. The zero
	// matrix means identity.
	Transform mgl32.Mat4

	// View is the camera matrix applied after Transform and before the
	// viewport projection. The zero matrix means identity.
	View mgl32.Mat4

	// HalfTexel insets source rectangles by half a texel on every side,
	// which avoids sampling neighbours in atlases with linear filtering.
	HalfTexel bool
}
