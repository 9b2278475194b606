// Package gpu defines the native drawing context the engine renders through.
//
// The context is supplied by the windowing layer once a GL context exists;
// nothing in the engine constructs one. Handles are plain uint32 names as the
// underlying API hands them out; zero is never a valid handle.
package gpu

import (
	"github.com/Faultbox/scenegl/pkg/math"
)

// BlendMode selects how an object is composited with the framebuffer.
type BlendMode uint8

const (
	// Opaque disables blending; objects are drawn during the graph walk.
	Opaque BlendMode = iota
	// Alpha is standard src-alpha / one-minus-src-alpha blending.
	Alpha
	// Additive adds the source color on top of the destination.
	Additive
	// Reverse inverts the destination (one-minus-dst-color, zero).
	Reverse
)

func (b BlendMode) String() string {
	switch b {
	case Opaque:
		return "opaque"
	case Alpha:
		return "alpha"
	case Additive:
		return "additive"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// ParseBlendMode maps a config string to a BlendMode.
func ParseBlendMode(s string) (BlendMode, bool) {
	for _, b := range []BlendMode{Opaque, Alpha, Additive, Reverse} {
		if b.String() == s {
			return b, true
		}
	}
	return Opaque, false
}

// NoError is returned by Context.Error when no error is pending.
const NoError uint32 = 0

// Attribute locations shared by every program and geometry.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribUV       = 2
)

// MeshData is interleaving-free vertex data for a geometry upload.
type MeshData struct {
	Positions []float32 // xyz
	Normals   []float32 // xyz, optional
	UVs       []float32 // uv, optional
	Indices   []uint32  // optional; drawn as arrays when empty
}

// VertexCount returns the number of vertices described by Positions.
func (m MeshData) VertexCount() int {
	return len(m.Positions) / 3
}

// TextureDesc describes a 2D RGBA8 texture.
type TextureDesc struct {
	Width, Height int32
	Linear        bool
	Repeat        bool
}

// TargetDesc describes an offscreen render target.
type TargetDesc struct {
	Width, Height int32
	// DepthOnly targets carry a comparison-ready depth texture and no
	// color attachment (shadow maps, depth capture).
	DepthOnly bool
}

// Target is the set of handles backing a render target.
type Target struct {
	FBO     uint32
	Texture uint32 // color texture, or depth texture for DepthOnly targets
	Depth   uint32 // depth renderbuffer for color targets
	Width   int32
	Height  int32
}

// Info describes the driver behind a context.
type Info struct {
	Vendor   string
	Renderer string
	Version  string
}

// Context is the opaque native drawing context.
type Context interface {
	Info() Info
	// Error pops the oldest pending error code, or NoError.
	Error() uint32

	SetDefaults()
	Clear(color [4]float32)
	ClearDepth()
	Viewport(x, y, width, height int32)
	SetBlend(mode BlendMode)
	SetCullFront(front bool)

	CreateGeometry(data MeshData) (uint32, error)
	DrawGeometry(id uint32)
	DeleteGeometry(id uint32)

	CreateProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UseProgram(id uint32)
	DeleteProgram(id uint32)
	UniformMat4(program uint32, name string, m math.Mat4)
	UniformMat3(program uint32, name string, m math.Mat3)
	UniformVec4s(program uint32, name string, v []math.Vec4)
	UniformInt(program uint32, name string, v int32)
	UniformFloat(program uint32, name string, v float32)

	CreateTexture(desc TextureDesc, rgba []byte) (uint32, error)
	BindTexture(unit uint32, id uint32)
	DeleteTexture(id uint32)

	CreateTarget(desc TargetDesc) (Target, error)
	BindTarget(t Target)
	UnbindTarget()
	DeleteTarget(t Target)
	// ReadPixels returns the color attachment of t (or the default
	// framebuffer when t.FBO is zero) as bottom-up RGBA rows.
	ReadPixels(t Target) []byte
}
